package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/renderers/tui"
	"github.com/goliatone/go-predictform/pkg/server"
)

func newPredictCmd(global *globalOptions) *cobra.Command {
	shared := &sharedFlags{}
	var (
		outputFormat string
		check        bool
		noColor      bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run the prediction form in the terminal",
		Long: `Prompt for the eight clinical measurements, submit them to the prediction
service and print the outcome.

Examples:
  # Interactive session against a local service
  predictform predict

  # Print results as JSON
  predictform predict -o json

  # Only check that the service is reachable
  predictform predict --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, shared)
			if err != nil {
				return err
			}
			format, err := tui.ParseOutputFormat(outputFormat)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}

			if check {
				return runHealthCheck(cmd, client.BaseURL(), client)
			}

			orch, err := newOrchestrator(cfg, logger)
			if err != nil {
				return err
			}
			fm, err := orch.Form(cmd.Context())
			if err != nil {
				return err
			}

			renderer, err := tui.New(
				tui.WithOutputFormat(format),
				tui.WithWriter(cmd.OutOrStdout()),
				tui.WithColor(!noColor),
			)
			if err != nil {
				return err
			}
			session, err := tui.NewSession(renderer, fm, client,
				form.WithPolicy(cfg.NumericPolicy),
				form.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			if err := session.Run(cmd.Context()); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&check, "check", false, "Check that the prediction service is reachable and exit")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	shared.bindAPI(cmd)
	shared.bindSource(cmd)
	return cmd
}

func runHealthCheck(cmd *cobra.Command, baseURL string, checker server.HealthChecker) error {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Checking " + baseURL + "..."
	s.Start()
	status, err := checker.Health(cmd.Context())
	s.Stop()

	out := cmd.OutOrStdout()
	if err != nil {
		fmt.Fprintf(out, "%s %s: %v\n", color.RedString("✗"), baseURL, err)
		return fmt.Errorf("prediction service unavailable: %w", err)
	}
	fmt.Fprintf(out, "%s %s: %s\n", color.GreenString("✓"), baseURL, status.Status)
	return nil
}
