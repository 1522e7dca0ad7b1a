// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/goliatone/go-predictform/internal/openapi/parser"
	"github.com/goliatone/go-predictform/pkg/contract"
	pkgmodel "github.com/goliatone/go-predictform/pkg/model"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
)

// ContractDocument wraps the embedded prediction contract.
func ContractDocument() pkgopenapi.Document {
	return pkgopenapi.MustNewDocument(contract.Source(), contract.Raw())
}

// MustContractOperations parses the embedded contract.
func MustContractOperations(t *testing.T) map[string]pkgopenapi.Operation {
	t.Helper()

	ops, err := parser.New(pkgopenapi.NewParserOptions()).Operations(context.Background(), ContractDocument())
	if err != nil {
		t.Fatalf("parse contract: %v", err)
	}
	return ops
}

// MustPredictOperation returns the prediction operation from the embedded
// contract.
func MustPredictOperation(t *testing.T) pkgopenapi.Operation {
	t.Helper()

	op, ok := MustContractOperations(t)[contract.PredictOperationID]
	if !ok {
		t.Fatalf("contract operation %q missing", contract.PredictOperationID)
	}
	return op
}

// MustPredictForm builds the prediction form model from the embedded contract.
func MustPredictForm(t *testing.T) pkgmodel.FormModel {
	t.Helper()

	form, err := pkgmodel.NewBuilder().Build(MustPredictOperation(t))
	if err != nil {
		t.Fatalf("build form model: %v", err)
	}
	return form
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}
