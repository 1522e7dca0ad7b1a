package predictor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBaseURL is returned by New when the base URL cannot be used.
var ErrInvalidBaseURL = errors.New("predictor: invalid base URL")

// TransportError wraps failures that prevented a response from arriving.
type TransportError struct {
	Op  string
	Err error
}

// Error returns the underlying description so it can be shown verbatim.
func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "predictor: transport failure"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationIssue is one entry of a FastAPI-style validation detail list.
type ValidationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type,omitempty"`
}

// Path joins the location segments with dots.
func (v ValidationIssue) Path() string {
	return strings.Join(v.Loc, ".")
}

// APIError describes a non-2xx response. Detail and ErrorText hold the
// structured body fields when present; Issues holds a list-shaped detail.
type APIError struct {
	StatusCode int
	Detail     string
	ErrorText  string
	Issues     []ValidationIssue
	Body       []byte
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.ErrorText != "":
		return e.ErrorText
	default:
		return fmt.Sprintf("predictor: unexpected status %d", e.StatusCode)
	}
}

// Structured reports whether the body carried a usable detail or error.
func (e *APIError) Structured() bool {
	return e.Detail != "" || e.ErrorText != "" || len(e.Issues) > 0
}

// DecodeError reports a 2xx response whose body could not be decoded.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("predictor: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// parseErrorBody fills detail/error from a JSON body. Non-JSON bodies leave
// the APIError unstructured.
func parseErrorBody(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	apiErr.ErrorText = rawText(payload.Error)
	if len(payload.Detail) == 0 || string(payload.Detail) == "null" {
		return apiErr
	}

	var issues []rawIssue
	if err := json.Unmarshal(payload.Detail, &issues); err == nil {
		for _, issue := range issues {
			apiErr.Issues = append(apiErr.Issues, issue.normalize())
		}
		return apiErr
	}
	apiErr.Detail = rawText(payload.Detail)
	return apiErr
}

type rawIssue struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

func (r rawIssue) normalize() ValidationIssue {
	loc := make([]string, 0, len(r.Loc))
	for _, segment := range r.Loc {
		switch v := segment.(type) {
		case string:
			loc = append(loc, v)
		case float64:
			loc = append(loc, fmt.Sprintf("%d", int(v)))
		default:
			loc = append(loc, fmt.Sprint(v))
		}
	}
	return ValidationIssue{Loc: loc, Msg: strings.TrimSpace(r.Msg), Type: r.Type}
}

// rawText renders a JSON value as display text: strings unquoted, other
// values in compact JSON. Empty strings and null yield "".
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return compact.String()
}
