package form

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumericPolicy decides what Submit does with text that is not a number.
type NumericPolicy string

const (
	// PolicyValidate rejects non-numeric input before any request is made.
	PolicyValidate NumericPolicy = "validate"
	// PolicyForward sends non-numeric input as null and lets the service
	// reject it.
	PolicyForward NumericPolicy = "forward"
)

// ParsePolicy maps configuration text to a policy. Empty selects
// PolicyValidate.
func ParsePolicy(raw string) (NumericPolicy, error) {
	switch NumericPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyValidate:
		return PolicyValidate, nil
	case PolicyForward:
		return PolicyForward, nil
	default:
		return "", fmt.Errorf("form: unknown numeric policy %q", raw)
	}
}

// ParseNumber parses trimmed text as a finite decimal float64. Only the
// plain decimal grammar a number input accepts is allowed, so hex floats,
// underscores and Inf/NaN spellings are rejected.
func ParseNumber(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, errEmptyNumber
	}
	if !decimalNumber.MatchString(text) {
		return 0, errNotNumber
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errNotNumber
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errNotNumber
	}
	return value, nil
}

var decimalNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

var leadingNumber = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// parseLeadingNumber reads the longest numeric prefix after leading
// whitespace, the way a browser's parseFloat does. No prefix yields NaN.
func parseLeadingNumber(raw string) float64 {
	match := leadingNumber.FindString(strings.TrimLeft(raw, " \t\n\r\f\v"))
	switch match {
	case "":
		return math.NaN()
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// overflow yields ±Inf alongside the range error
	value, _ := strconv.ParseFloat(match, 64)
	return value
}

// convert builds the request values under the given policy. Under
// PolicyValidate every field must parse; failures are collected per field.
func convert(values Values, policy NumericPolicy) (map[string]float64, *ValidationError) {
	out := make(map[string]float64, len(fieldNames))
	var invalid *ValidationError

	for _, name := range fieldNames {
		raw := values.Get(name)
		if policy == PolicyForward {
			out[name] = parseLeadingNumber(raw)
			continue
		}
		value, err := ParseNumber(raw)
		if err != nil {
			if invalid == nil {
				invalid = &ValidationError{Fields: make(map[string]string)}
			}
			invalid.Order = append(invalid.Order, name)
			invalid.Fields[name] = err.Error()
			continue
		}
		out[name] = value
	}
	if invalid != nil {
		return nil, invalid
	}
	return out, nil
}
