// Package openapi exposes the public contracts for the loader and parser
// stages that turn the prediction service description into operation
// wrappers. Implementations live under internal/openapi to keep kin-openapi
// types out of the public API.
package openapi
