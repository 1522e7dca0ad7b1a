package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/server"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	shared := &sharedFlags{}
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction form over HTTP",
		Long: `Serve the prediction form as a web page with a JSON API.

Examples:
  # Serve on :8080 against a local prediction service
  predictform serve

  # Point at a remote service and use the dark theme
  predictform serve --api-url https://predict.example.com --variant dark`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, shared)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cfg, logger)
			if err != nil {
				return err
			}
			if _, err := orch.Form(cmd.Context()); err != nil {
				return err
			}
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}

			srv, err := server.New(orch, client,
				server.WithLogger(logger),
				server.WithSessionTTL(cfg.SessionTTL),
				server.WithHealthChecker(client),
				server.WithFormOptions(form.WithPolicy(cfg.NumericPolicy)),
			)
			if err != nil {
				return err
			}
			logger.Info("prediction service", "url", client.BaseURL(), "policy", cfg.NumericPolicy)
			return srv.ListenAndServe(cmd.Context(), cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	shared.bindAPI(cmd)
	shared.bindTheme(cmd)
	shared.bindSource(cmd)
	return cmd
}
