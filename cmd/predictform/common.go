package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-predictform"
	"github.com/goliatone/go-predictform/internal/config"
	"github.com/goliatone/go-predictform/internal/logging"
	"github.com/goliatone/go-predictform/pkg/form"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
	"github.com/goliatone/go-predictform/pkg/orchestrator"
	"github.com/goliatone/go-predictform/pkg/predictor"
)

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

// sharedFlags are the per-command overrides applied on top of the resolved
// configuration.
type sharedFlags struct {
	apiURL  string
	policy  string
	theme   string
	variant string
	source  string
}

func (f *sharedFlags) bindAPI(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Prediction service base URL")
	cmd.Flags().StringVar(&f.policy, "policy", "", "Numeric input policy (validate, forward)")
}

func (f *sharedFlags) bindTheme(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.theme, "theme", "", "Theme name")
	cmd.Flags().StringVar(&f.variant, "variant", "", "Theme variant")
}

func (f *sharedFlags) bindSource(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Contract path or URL (embedded contract when empty)")
}

// loadConfig resolves configuration and applies flags the user set.
func loadConfig(cmd *cobra.Command, global *globalOptions, shared *sharedFlags) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigPath: global.configPath,
		EnvFile:    global.envFile,
	})
	if err != nil {
		return config.Config{}, err
	}

	override := func(name string, dst *string, value string) {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			*dst = value
		}
	}
	override("log-level", &cfg.LogLevel, global.logLevel)
	override("log-format", &cfg.LogFormat, global.logFormat)
	if shared != nil {
		override("api-url", &cfg.APIURL, shared.apiURL)
		override("theme", &cfg.Theme, shared.theme)
		override("variant", &cfg.ThemeVariant, shared.variant)
		override("source", &cfg.Contract, shared.source)
		if flag := cmd.Flags().Lookup("policy"); flag != nil && flag.Changed {
			policy, err := form.ParsePolicy(shared.policy)
			if err != nil {
				return config.Config{}, err
			}
			cfg.NumericPolicy = policy
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	return logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
}

func newOrchestrator(cfg config.Config, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithThemeDefaults(cfg.Theme, cfg.ThemeVariant),
	}

	if cfg.Contract != "" {
		src, err := pkgopenapi.ResolveSource(cfg.Contract)
		if err != nil {
			return nil, fmt.Errorf("contract source: %w", err)
		}
		opts = append(opts,
			orchestrator.WithSource(src),
			orchestrator.WithLoader(predictform.NewLoader(pkgopenapi.WithHTTPFallback(cfg.RequestTimeout))),
		)
	}

	if cfg.Preset != "" {
		data, err := os.ReadFile(cfg.Preset)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		transformer, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithSchemaTransformer(transformer))
	}

	return orchestrator.New(opts...), nil
}

func newClient(cfg config.Config, logger *slog.Logger) (*predictor.Client, error) {
	return predictor.New(cfg.APIURL,
		predictor.WithTimeout(cfg.RequestTimeout),
		predictor.WithLogger(logger),
	)
}
