package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-predictform/pkg/contract"
)

func mutate(t *testing.T, old, replacement string) []byte {
	t.Helper()
	raw := string(contract.Raw())
	if !strings.Contains(raw, old) {
		t.Fatalf("contract does not contain %q", old)
	}
	return []byte(strings.Replace(raw, old, replacement, 1))
}

func TestValidateContract_Embedded(t *testing.T) {
	result := ValidateContract(context.Background(), contract.Source(), contract.Raw(), ContractValidationOptions{})
	if !result.Valid {
		t.Fatalf("expected embedded contract to be valid, got %v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", result.Issues)
	}
}

func TestValidateContract_BoundsInverted(t *testing.T) {
	raw := mutate(t, "          minimum: 0\n          maximum: 120", "          minimum: 200\n          maximum: 120")

	result := ValidateContract(context.Background(), nil, raw, ContractValidationOptions{})
	want := []ContractIssue{{
		Path:    "#/requestBody/properties/Age",
		Field:   "Age",
		Message: "minimum 200 exceeds maximum 120",
	}}
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateContract_FieldNotRequired(t *testing.T) {
	raw := mutate(t, "        - Glucose\n", "")

	result := ValidateContract(context.Background(), nil, raw, ContractValidationOptions{})
	want := []ContractIssue{{
		Path:    "#/requestBody/properties/Glucose",
		Field:   "Glucose",
		Message: "must be required",
	}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateContract_UnknownOperation(t *testing.T) {
	result := ValidateContract(context.Background(), nil, contract.Raw(), ContractValidationOptions{
		OperationID: "scoreRisk",
	})
	want := []ContractIssue{{Path: "#/paths", Message: `operation "scoreRisk" not found`}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateContract_FieldSubset(t *testing.T) {
	result := ValidateContract(context.Background(), nil, contract.Raw(), ContractValidationOptions{
		Fields: []string{"Glucose", "BMI", "HbA1c"},
	})
	if result.Valid {
		t.Fatalf("expected invalid result")
	}

	got := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		got = append(got, issue.String())
	}
	want := []string{
		"HbA1c: is missing",
		"Age: is not a model feature",
		"BloodPressure: is not a model feature",
		"DiabetesPedigreeFunction: is not a model feature",
		"Insulin: is not a model feature",
		"Pregnancies: is not a model feature",
		"SkinThickness: is not a model feature",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateContract_EmptyDocument(t *testing.T) {
	result := ValidateContract(context.Background(), nil, nil, ContractValidationOptions{})
	if result.Valid || len(result.Issues) != 1 {
		t.Fatalf("expected a single issue, got %+v", result)
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	cases := map[string]string{
		"":                                        "",
		"#/requestBody/properties/BMI":            "BMI",
		"#/requestBody/properties/BMI/type":       "BMI",
		"#/properties/owner/properties/a~1b":      "owner.a/b",
		"#/components/schemas/DiabetesInput":      "",
		"#/properties/settings/properties/x~0y/x": "settings.x~y",
	}
	for pointer, want := range cases {
		if got := fieldPathFromPointer(pointer); got != want {
			t.Errorf("fieldPathFromPointer(%q) = %q, want %q", pointer, got, want)
		}
	}
}

func TestExtractJSONPointer(t *testing.T) {
	cases := map[string]string{
		"bad type at #/components/schemas/Input.": "#/components/schemas/Input",
		"value (#/paths/~1api~1predict) invalid":  "#/paths/~1api~1predict",
		"no pointer here":                         "",
	}
	for msg, want := range cases {
		if got := extractJSONPointer(msg); got != want {
			t.Errorf("extractJSONPointer(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestValidateContract_BuilderError(t *testing.T) {
	raw := mutate(t, "x-formgen-order: 8", "x-formgen-order: last")

	result := ValidateContract(context.Background(), nil, raw, ContractValidationOptions{})
	if result.Valid || len(result.Issues) != 1 {
		t.Fatalf("expected a single issue, got %+v", result)
	}
	if got := result.Issues[0].Message; !strings.Contains(got, `invalid order "last"`) {
		t.Fatalf("unexpected message %q", got)
	}
}
