package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-predictform"
	"github.com/goliatone/go-predictform/internal/config"
	"github.com/goliatone/go-predictform/pkg/contract"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
	"github.com/goliatone/go-predictform/pkg/validation"
)

var errContractInvalid = errors.New("contract is not usable by the prediction form")

func newContractCmd(global *globalOptions) *cobra.Command {
	shared := &sharedFlags{}
	var (
		outputFormat string
		lint         bool
	)

	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Print the form model built from the contract",
		Long: `Load the OpenAPI contract, build the prediction form model and print it.

Examples:
  # Embedded contract as JSON
  predictform contract

  # A contract served by the prediction service, as YAML
  predictform contract --source http://localhost:8000/openapi.json -o yaml

  # Check that a contract declares every model feature
  predictform contract --source ./predict.yaml --lint`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, shared)
			if err != nil {
				return err
			}
			if lint {
				return runLint(cmd, cfg, outputFormat)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cfg, logger)
			if err != nil {
				return err
			}
			fm, err := orch.Form(cmd.Context())
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), fm, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&lint, "lint", false, "Validate the contract instead of printing the form model")
	shared.bindSource(cmd)
	return cmd
}

func runLint(cmd *cobra.Command, cfg config.Config, format string) error {
	src, raw, err := readContract(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	result := validation.ValidateContract(cmd.Context(), src, raw, validation.ContractValidationOptions{})
	if err := writeDocument(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}
	if !result.Valid {
		return errContractInvalid
	}
	return nil
}

func readContract(ctx context.Context, cfg config.Config) (pkgopenapi.Source, []byte, error) {
	if cfg.Contract == "" {
		return contract.Source(), contract.Raw(), nil
	}
	src, err := pkgopenapi.ResolveSource(cfg.Contract)
	if err != nil {
		return nil, nil, fmt.Errorf("contract source: %w", err)
	}
	loader := predictform.NewLoader(pkgopenapi.WithHTTPFallback(cfg.RequestTimeout))
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return doc.Source(), doc.Raw(), nil
}

// writeDocument prints value as indented JSON or block YAML. YAML keeps the
// JSON field names and order.
func writeDocument(w io.Writer, value any, format string) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		_, err = fmt.Fprintln(w, string(payload))
		return err
	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(payload, &node); err != nil {
			return fmt.Errorf("convert document: %w", err)
		}
		blockStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
