// Package contract embeds the OpenAPI description of the prediction endpoint.
// The request schema is the source of the form's labels, placeholders, bounds
// and step attributes.
package contract

import (
	"embed"
	"io/fs"

	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
)

const (
	// DocumentName is the embedded contract file name.
	DocumentName = "predict.yaml"
	// PredictOperationID identifies the prediction operation.
	PredictOperationID = "predictDiabetes"
	// HealthOperationID identifies the health probe.
	HealthOperationID = "health"
)

//go:embed predict.yaml
var files embed.FS

// FS exposes the embedded contract bundle.
func FS() fs.FS {
	return files
}

// Source returns the embedded contract as an fs source.
func Source() pkgopenapi.Source {
	return pkgopenapi.SourceFromFS(DocumentName)
}

// Raw returns the embedded contract bytes.
func Raw() []byte {
	data, err := files.ReadFile(DocumentName)
	if err != nil {
		// embedded at build time
		panic(err)
	}
	return data
}
