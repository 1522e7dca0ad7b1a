// Package validation checks that a contract can drive the prediction form:
// the operation exists and its request body declares every model feature as
// a required number.
package validation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	internalParser "github.com/goliatone/go-predictform/internal/openapi/parser"
	"github.com/goliatone/go-predictform/pkg/contract"
	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/model"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
)

// ContractIssue represents a problem with optional location metadata.
type ContractIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i ContractIssue) String() string {
	switch {
	case i.Field != "":
		return fmt.Sprintf("%s: %s", i.Field, i.Message)
	case i.Path != "":
		return fmt.Sprintf("%s: %s", i.Path, i.Message)
	default:
		return i.Message
	}
}

// ContractValidationResult captures validation outcomes.
type ContractValidationResult struct {
	Valid  bool            `json:"valid"`
	Issues []ContractIssue `json:"issues,omitempty"`
}

// ContractValidationOptions configures validation behaviour. Zero values use
// the built-in parser and builder, the prediction operation and the eight
// model features.
type ContractValidationOptions struct {
	Parser      pkgopenapi.Parser
	Builder     model.Builder
	OperationID string
	Fields      []string
}

// ValidateContract parses raw and reports every problem found.
func ValidateContract(ctx context.Context, src pkgopenapi.Source, raw []byte, opts ContractValidationOptions) ContractValidationResult {
	opts = withDefaults(opts)
	if src == nil {
		src = contract.Source()
	}

	doc, err := pkgopenapi.NewDocument(src, raw)
	if err != nil {
		return invalid(issueFromError(err))
	}

	operations, err := opts.Parser.Operations(ctx, doc)
	if err != nil {
		return invalid(issueFromError(err))
	}
	op, ok := operations[opts.OperationID]
	if !ok {
		return invalid(ContractIssue{
			Path:    "#/paths",
			Message: fmt.Sprintf("operation %q not found", opts.OperationID),
		})
	}

	if issues := checkRequestBody(op.RequestBody, opts.Fields); len(issues) > 0 {
		return ContractValidationResult{Valid: false, Issues: issues}
	}
	// builder errors overlap the body checks; only report them for a sound body
	if _, err := opts.Builder.Build(op); err != nil {
		return invalid(issueFromError(err))
	}
	return ContractValidationResult{Valid: true}
}

func withDefaults(opts ContractValidationOptions) ContractValidationOptions {
	if opts.Parser == nil {
		opts.Parser = internalParser.New(pkgopenapi.NewParserOptions())
	}
	if opts.Builder == nil {
		opts.Builder = model.NewBuilder()
	}
	if opts.OperationID == "" {
		opts.OperationID = contract.PredictOperationID
	}
	if len(opts.Fields) == 0 {
		opts.Fields = form.FieldNames()
	}
	return opts
}

func invalid(issue ContractIssue) ContractValidationResult {
	return ContractValidationResult{Valid: false, Issues: []ContractIssue{issue}}
}

func checkRequestBody(schema pkgopenapi.Schema, fields []string) []ContractIssue {
	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}
	expected := make(map[string]struct{}, len(fields))

	var issues []ContractIssue
	for _, name := range fields {
		expected[name] = struct{}{}
		pointer := propertyPointer(name)

		prop, ok := schema.Properties[name]
		if !ok {
			issues = append(issues, ContractIssue{Path: pointer, Field: name, Message: "is missing"})
			continue
		}
		if _, ok := required[name]; !ok {
			issues = append(issues, ContractIssue{Path: pointer, Field: name, Message: "must be required"})
		}
		if prop.Type != "number" && prop.Type != "integer" {
			issues = append(issues, ContractIssue{
				Path:    pointer + "/type",
				Field:   name,
				Message: fmt.Sprintf("must be numeric, got %q", prop.Type),
			})
		}
		if prop.Minimum != nil && prop.Maximum != nil && *prop.Minimum > *prop.Maximum {
			issues = append(issues, ContractIssue{
				Path:  pointer,
				Field: name,
				Message: fmt.Sprintf("minimum %s exceeds maximum %s",
					strconv.FormatFloat(*prop.Minimum, 'f', -1, 64),
					strconv.FormatFloat(*prop.Maximum, 'f', -1, 64)),
			})
		}
	}

	extras := make([]string, 0)
	for name := range schema.Properties {
		if _, ok := expected[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		issues = append(issues, ContractIssue{
			Path:    propertyPointer(name),
			Field:   name,
			Message: "is not a model feature",
		})
	}
	return issues
}

func propertyPointer(name string) string {
	name = strings.ReplaceAll(name, "~", "~0")
	name = strings.ReplaceAll(name, "/", "~1")
	return "#/requestBody/properties/" + name
}

func issueFromError(err error) ContractIssue {
	if err == nil {
		return ContractIssue{Message: "unknown error"}
	}

	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	msg = strings.TrimPrefix(msg, "openapi parser: ")
	msg = strings.TrimPrefix(msg, "openapi: ")
	msg = strings.TrimPrefix(msg, "model builder: ")
	msg = strings.TrimSpace(msg)

	return ContractIssue{
		Path:    path,
		Field:   fieldPathFromPointer(path),
		Message: msg,
	}
}

func extractJSONPointer(message string) string {
	if message == "" {
		return ""
	}
	if idx := strings.LastIndex(message, " at "); idx >= 0 {
		candidate := strings.TrimSpace(message[idx+4:])
		if strings.HasPrefix(candidate, "#/") {
			return trimPointer(candidate)
		}
	}
	if idx := strings.LastIndex(message, "#/"); idx >= 0 {
		return trimPointer(strings.TrimSpace(message[idx:]))
	}
	return ""
}

func trimPointer(pointer string) string {
	if pointer == "" {
		return ""
	}
	if idx := strings.IndexAny(pointer, " \t"); idx >= 0 {
		pointer = pointer[:idx]
	}
	return strings.TrimRight(pointer, ".)];,:\"'")
}

// fieldPathFromPointer turns #/.../properties/BMI into BMI. Schema keywords
// between property names are dropped.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		if parts[idx] != "properties" || idx+1 >= len(parts) {
			continue
		}
		next := strings.ReplaceAll(parts[idx+1], "~1", "/")
		out = append(out, strings.ReplaceAll(next, "~0", "~"))
		idx++
	}
	return strings.Join(out, ".")
}
