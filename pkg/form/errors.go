package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-predictform/pkg/predictor"
)

// FallbackMessage is shown when a failure carries no usable description.
const FallbackMessage = "An error occurred. Please try again."

var (
	errEmptyNumber = errors.New("is required")
	errNotNumber   = errors.New("must be a number")
)

// ValidationError lists fields whose text is not a finite number.
type ValidationError struct {
	Fields map[string]string
	Order  []string
}

func (e *ValidationError) Error() string {
	if len(e.Order) == 1 {
		return fmt.Sprintf("Please enter a valid number for %s.", e.Order[0])
	}
	return fmt.Sprintf("Please enter valid numbers for %s.", strings.Join(e.Order, ", "))
}

// MessageFor converts a submission failure into the user-facing message and
// optional per-field messages. Precedence: the service's detail, then its
// error field, then the error's own description, then FallbackMessage. A
// service error without a structured body yields FallbackMessage.
func MessageFor(err error) (string, map[string]string) {
	if err == nil {
		return "", nil
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Error(), copyStrings(validation.Fields)
	}

	var apiErr *predictor.APIError
	if errors.As(err, &apiErr) {
		switch {
		case len(apiErr.Issues) > 0:
			return issueMessage(apiErr.Issues)
		case apiErr.Detail != "":
			return apiErr.Detail, nil
		case apiErr.ErrorText != "":
			return apiErr.ErrorText, nil
		default:
			return FallbackMessage, nil
		}
	}

	if text := strings.TrimSpace(err.Error()); text != "" {
		return text, nil
	}
	return FallbackMessage, nil
}

// issueMessage joins validation issues as "field: msg" and maps their
// locations onto form fields.
func issueMessage(issues []predictor.ValidationIssue) (string, map[string]string) {
	mapping := MapErrorPaths(fieldNames, issuesPayload(issues))

	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Msg == "" {
			continue
		}
		field, formLevel := mapErrorPath(issue.Path(), fieldSet())
		switch {
		case !formLevel && field != "":
			parts = append(parts, field+": "+issue.Msg)
		case issue.Path() != "" && !isFormLevelKey(issue.Path()):
			parts = append(parts, issue.Path()+": "+issue.Msg)
		default:
			parts = append(parts, issue.Msg)
		}
	}
	if len(parts) == 0 {
		return FallbackMessage, nil
	}

	var fieldErrors map[string]string
	if len(mapping.Fields) > 0 {
		fieldErrors = make(map[string]string, len(mapping.Fields))
		for name, messages := range mapping.Fields {
			fieldErrors[name] = strings.Join(messages, "; ")
		}
	}
	return strings.Join(parts, "; "), fieldErrors
}

func issuesPayload(issues []predictor.ValidationIssue) map[string][]string {
	payload := make(map[string][]string, len(issues))
	for _, issue := range issues {
		payload[issue.Path()] = append(payload[issue.Path()], issue.Msg)
	}
	return payload
}

func copyStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
