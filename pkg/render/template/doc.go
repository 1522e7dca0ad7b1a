// Package template defines the renderer-agnostic template interface. The
// gotemplate subpackage provides the go-template implementation.
package template
