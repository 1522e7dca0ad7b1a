package render

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

const (
	// DefaultThemeName is the built-in theme.
	DefaultThemeName = "clinic"
	// DarkVariant is the built-in dark variant.
	DarkVariant = "dark"

	// AssetStylesheet is the manifest asset key for the page stylesheet.
	AssetStylesheet = "stylesheet"
	// PartialPage is the manifest template key for the page layout.
	PartialPage = "page"
)

// DefaultTokens are the built-in colour tokens.
func DefaultTokens() map[string]string {
	return map[string]string{
		TokenPositive: "#e74c3c",
		TokenNegative: "#27ae60",
		"brand":       "#2c3e50",
		"accent":      "#3498db",
		"surface":     "#ffffff",
		"background":  "#f4f6f8",
		"text":        "#2c3e50",
		"error":       "#c0392b",
	}
}

// DefaultPartials are the templates used when a theme does not override them.
func DefaultPartials() map[string]string {
	return map[string]string{
		PartialPage: "templates/page.tmpl",
	}
}

// DefaultManifest describes the built-in theme and its dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:      DefaultThemeName,
		Version:   "1.0.0",
		Tokens:    DefaultTokens(),
		Templates: DefaultPartials(),
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: "predictform.css",
			},
		},
		Variants: map[string]theme.Variant{
			DarkVariant: {
				Tokens: map[string]string{
					"surface":    "#1f2933",
					"background": "#111827",
					"text":       "#e5e7eb",
					"brand":      "#e5e7eb",
				},
			},
		},
	}
}

// ThemeCatalog is a theme.ThemeSelector over an in-memory set of manifests.
type ThemeCatalog struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	provider       theme.ThemeProvider
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ThemeCatalog)(nil)

// NewThemeCatalog registers the manifests (DefaultManifest when none are
// given) and uses defaultTheme/defaultVariant for empty selections.
func NewThemeCatalog(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*ThemeCatalog, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}

	registry := theme.NewRegistry()
	catalog := &ThemeCatalog{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		provider:       registry,
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
			return nil, fmt.Errorf("render: theme manifest requires a name")
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("render: register theme %q: %w", manifest.Name, err)
		}
		catalog.manifests[manifest.Name] = manifest
	}
	if catalog.defaultTheme == "" {
		catalog.defaultTheme = manifests[0].Name
	}
	if _, ok := catalog.manifests[catalog.defaultTheme]; !ok {
		return nil, fmt.Errorf("render: default theme %q is not registered", catalog.defaultTheme)
	}
	return catalog, nil
}

// Provider exposes the underlying go-theme registry.
func (c *ThemeCatalog) Provider() theme.ThemeProvider {
	return c.provider
}

// Themes lists registered theme names.
func (c *ThemeCatalog) Themes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.manifests))
	for name := range c.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves a theme and variant. Empty values fall back to the
// catalog defaults; an unknown variant is an error.
func (c *ThemeCatalog) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = c.defaultTheme
	}
	manifest, ok := c.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" && name == c.defaultTheme {
		variant = c.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
	}

	return &theme.Selection{
		Theme:    name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// RendererConfigFromSelection merges manifest and variant tokens, templates
// and assets into the configuration handed to renderers. Fallback partials
// fill any template the theme leaves out.
func RendererConfigFromSelection(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	partials := make(map[string]string, len(fallbacks)+len(manifest.Templates))
	for key, value := range fallbacks {
		partials[key] = value
	}
	for key, value := range manifest.Templates {
		partials[key] = value
	}
	for key, value := range variant.Templates {
		partials[key] = value
	}

	tokens := make(map[string]string, len(manifest.Tokens)+len(variant.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	for key, value := range variant.Tokens {
		tokens[key] = value
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := make(map[string]string, len(manifest.Assets.Files)+len(variant.Assets.Files))
	for key, value := range manifest.Assets.Files {
		files[key] = value
	}
	for key, value := range variant.Assets.Files {
		files[key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}
}

// CSSVarsStyle renders css variables as a :root block in key order.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
