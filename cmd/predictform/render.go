package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-predictform/pkg/orchestrator"
)

func newRenderCmd(global *globalOptions) *cobra.Command {
	shared := &sharedFlags{}
	var (
		renderer string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the empty form to a file or stdout",
		Long: `Render the prediction form without a server, for static hosting or review.

Examples:
  # HTML page to stdout
  predictform render

  # JSON form document with the dark theme
  predictform render -r json --variant dark --output form.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, shared)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cfg, logger)
			if err != nil {
				return err
			}

			out, err := orch.Render(cmd.Context(), orchestrator.Request{Renderer: renderer})
			if err != nil {
				return fmt.Errorf("render form: %w", err)
			}

			if output != "" {
				if err := os.WriteFile(output, out.Body, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(out.Body)
			return err
		},
	}

	cmd.Flags().StringVarP(&renderer, "renderer", "r", "vanilla", "Renderer to use (vanilla, json)")
	cmd.Flags().StringVar(&output, "output", "", "Output file (stdout if empty)")
	shared.bindTheme(cmd)
	shared.bindSource(cmd)
	return cmd
}
