// Package form owns the prediction form state. A Controller holds the eight
// raw field values, converts them to numbers on submission, calls a Predictor
// and records either a result or an error message. State is an immutable
// snapshot replaced on every transition; responses for superseded submissions
// are discarded.
package form
