// Package model defines the typed form model consumed by renderers. Builders
// reside in internal/model but return the types defined here. Numeric bounds
// from the request schema surface as Field.Min/Max, and the x-formgen-step
// extension as Field.Step, so renderers can map them onto HTML attributes and
// the terminal validator without parsing raw extension payloads. Remaining
// x-formgen extensions flow into FormModel and Field metadata.
package model
