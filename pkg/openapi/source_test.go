package openapi_test

import (
	"testing"

	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
)

func TestResolveSource(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		wantKind pkgopenapi.SourceKind
		wantNil  bool
		wantErr  bool
	}{
		{name: "empty", raw: "  ", wantNil: true},
		{name: "url", raw: "http://localhost:8000/openapi.json", wantKind: pkgopenapi.SourceKindURL},
		{name: "file", raw: "contracts/predict.yaml", wantKind: pkgopenapi.SourceKindFile},
		{name: "bad url", raw: "http://%zz", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := pkgopenapi.ResolveSource(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if tc.wantNil {
				if src != nil {
					t.Fatalf("expected nil source, got %v", src)
				}
				return
			}
			if src.Kind() != tc.wantKind {
				t.Fatalf("kind mismatch: want %s, got %s", tc.wantKind, src.Kind())
			}
		})
	}
}

func TestNewDocumentRejectsEmptyPayload(t *testing.T) {
	if _, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFS("predict.yaml"), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := pkgopenapi.NewDocument(nil, []byte("openapi: 3.0.3")); err == nil {
		t.Fatalf("expected error for nil source")
	}
}

func TestOperationResponseCodesSorted(t *testing.T) {
	op := pkgopenapi.MustNewOperation("predictDiabetes", "POST", "/api/predict", pkgopenapi.Schema{}, map[string]pkgopenapi.Schema{
		"500": {Type: "object"},
		"200": {Type: "object"},
		"422": {Type: "object"},
	})
	got := op.ResponseCodes()
	want := []string{"200", "422", "500"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codes mismatch: want %v, got %v", want, got)
		}
	}
	if !op.HasResponse("422") {
		t.Fatalf("expected 422 response registered")
	}
}
