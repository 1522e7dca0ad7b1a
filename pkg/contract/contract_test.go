package contract

import (
	"context"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-predictform/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
)

func TestEmbeddedContractIsReadable(t *testing.T) {
	data, err := fs.ReadFile(FS(), DocumentName)
	if err != nil {
		t.Fatalf("read embedded contract: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("embedded contract is empty")
	}
	if diff := cmp.Diff(string(data), string(Raw())); diff != "" {
		t.Fatalf("Raw mismatch (-fs +raw):\n%s", diff)
	}
	if Source().Kind() != pkgopenapi.SourceKindFS || Source().Location() != DocumentName {
		t.Fatalf("unexpected source %v %q", Source().Kind(), Source().Location())
	}
}

func TestEmbeddedContractDescribesPrediction(t *testing.T) {
	doc := pkgopenapi.MustNewDocument(Source(), Raw())
	ops, err := parser.New(pkgopenapi.NewParserOptions()).Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse contract: %v", err)
	}

	predict, ok := ops[PredictOperationID]
	if !ok {
		t.Fatalf("operation %q missing", PredictOperationID)
	}
	if predict.Method != "POST" || predict.Path != "/api/predict" {
		t.Fatalf("predict route = %s %s", predict.Method, predict.Path)
	}

	wantRequired := []string{
		"Pregnancies", "Glucose", "BloodPressure", "SkinThickness",
		"Insulin", "BMI", "DiabetesPedigreeFunction", "Age",
	}
	if diff := cmp.Diff(wantRequired, predict.RequestBody.Required); diff != "" {
		t.Fatalf("required fields mismatch (-want +got):\n%s", diff)
	}
	for _, name := range wantRequired {
		prop, ok := predict.RequestBody.Properties[name]
		if !ok {
			t.Fatalf("property %s missing", name)
		}
		if prop.Type != "number" {
			t.Fatalf("%s type = %q, want number", name, prop.Type)
		}
		if prop.Minimum == nil || *prop.Minimum != 0 {
			t.Fatalf("%s minimum should be 0", name)
		}
	}
	if age := predict.RequestBody.Properties["Age"]; age.Maximum == nil || *age.Maximum != 120 {
		t.Fatalf("Age maximum should be 120")
	}
	if got := predict.RequestBody.Properties["BMI"].Extensions["x-formgen-step"]; got != "0.01" {
		t.Fatalf("BMI step = %v", got)
	}

	health, ok := ops[HealthOperationID]
	if !ok {
		t.Fatalf("operation %q missing", HealthOperationID)
	}
	if health.Method != "GET" || health.Path != "/api/" {
		t.Fatalf("health route = %s %s", health.Method, health.Path)
	}
}
