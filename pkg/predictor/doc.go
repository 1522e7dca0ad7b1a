// Package predictor is the JSON-over-HTTP client for the diabetes prediction
// service. It posts the eight clinical measurements to {base}/api/predict and
// decodes either a Result or a typed error (APIError, TransportError,
// DecodeError) that callers inspect with errors.As.
package predictor
