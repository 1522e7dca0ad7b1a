// Package config resolves runtime settings from defaults, an optional YAML
// file, an optional .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-predictform/internal/logging"
	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/predictor"
)

const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultSessionTTL     = 30 * time.Minute
	DefaultEnvFile        = ".env"

	envPrefix = "PREDICTFORM_"
)

// Config is the resolved runtime configuration.
type Config struct {
	APIURL         string
	Addr           string
	NumericPolicy  form.NumericPolicy
	RequestTimeout time.Duration
	Theme          string
	ThemeVariant   string
	Contract       string
	Preset         string
	SessionTTL     time.Duration
	LogLevel       string
	LogFormat      string
}

type configFile struct {
	API struct {
		URL            string `yaml:"url"`
		RequestTimeout string `yaml:"request_timeout"`
	} `yaml:"api"`
	Server struct {
		Addr       string `yaml:"addr"`
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"server"`
	Form struct {
		NumericPolicy string `yaml:"numeric_policy"`
		Contract      string `yaml:"contract"`
		Preset        string `yaml:"preset"`
	} `yaml:"form"`
	Theme struct {
		Name    string `yaml:"name"`
		Variant string `yaml:"variant"`
	} `yaml:"theme"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadOptions control where Load looks for settings.
type LoadOptions struct {
	// ConfigPath is an optional YAML file. A missing file is an error only
	// when the path was set explicitly.
	ConfigPath string
	// EnvFile is an optional dotenv file; a missing file is ignored.
	EnvFile string
	// LookupEnv reads the environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:         predictor.DefaultBaseURL,
		Addr:           DefaultAddr,
		NumericPolicy:  form.PolicyValidate,
		RequestTimeout: DefaultRequestTimeout,
		SessionTTL:     DefaultSessionTTL,
		LogLevel:       "info",
		LogFormat:      logging.FormatText,
	}
}

// Load resolves the configuration and validates it.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.ConfigPath != "" {
		raw, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", opts.ConfigPath, err)
		}
		if err := cfg.applyFile(raw); err != nil {
			return Config{}, err
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			lookup = layered(lookup, values)
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", opts.EnvFile, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// layered prefers the process environment over dotenv values.
func layered(env func(string) (string, bool), dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if value, ok := env(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}
}

func (c *Config) applyFile(raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("config: parse config file: %w", err)
	}

	setString(&c.APIURL, f.API.URL)
	setString(&c.Addr, f.Server.Addr)
	setString(&c.Contract, f.Form.Contract)
	setString(&c.Preset, f.Form.Preset)
	setString(&c.Theme, f.Theme.Name)
	setString(&c.ThemeVariant, f.Theme.Variant)
	setString(&c.LogLevel, f.Log.Level)
	setString(&c.LogFormat, f.Log.Format)

	if f.Form.NumericPolicy != "" {
		policy, err := form.ParsePolicy(f.Form.NumericPolicy)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.NumericPolicy = policy
	}
	if err := setDuration(&c.RequestTimeout, "api.request_timeout", f.API.RequestTimeout); err != nil {
		return err
	}
	return setDuration(&c.SessionTTL, "server.session_ttl", f.Server.SessionTTL)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(keys ...string) string {
		for _, key := range keys {
			if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
		return ""
	}

	setString(&c.APIURL, get(envPrefix+"API_URL", "REACT_APP_API_URL", "API_URL"))
	setString(&c.Addr, get(envPrefix+"ADDR"))
	setString(&c.Theme, get(envPrefix+"THEME"))
	setString(&c.ThemeVariant, get(envPrefix+"THEME_VARIANT"))
	setString(&c.Contract, get(envPrefix+"CONTRACT"))
	setString(&c.Preset, get(envPrefix+"PRESET"))
	setString(&c.LogLevel, get(envPrefix+"LOG_LEVEL"))
	setString(&c.LogFormat, get(envPrefix+"LOG_FORMAT"))

	if raw := get(envPrefix + "NUMERIC_POLICY"); raw != "" {
		policy, err := form.ParsePolicy(raw)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.NumericPolicy = policy
	}
	if err := setDuration(&c.RequestTimeout, envPrefix+"REQUEST_TIMEOUT", get(envPrefix+"REQUEST_TIMEOUT")); err != nil {
		return err
	}
	return setDuration(&c.SessionTTL, envPrefix+"SESSION_TTL", get(envPrefix+"SESSION_TTL"))
}

// Validate rejects settings the commands cannot run with.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.APIURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("config: api url %q must be an absolute http(s) URL", c.APIURL)
	}
	if _, err := form.ParsePolicy(string(c.NumericPolicy)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: request timeout must not be negative")
	}
	if c.SessionTTL < 0 {
		return errors.New("config: session ttl must not be negative")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: listen address is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, name, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	*dst = d
	return nil
}
