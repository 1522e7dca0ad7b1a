package predictform

import (
	internalLoader "github.com/goliatone/go-predictform/internal/openapi/loader"
	internalParser "github.com/goliatone/go-predictform/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
)

// NewLoader constructs a contract loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	return internalLoader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewParser constructs a contract parser backed by the internal
// implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalParser.New(pkgopenapi.NewParserOptions(options...))
}
