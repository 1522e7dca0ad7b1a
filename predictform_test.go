package predictform

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestGenerateHTMLRendersContractForm(t *testing.T) {
	out, err := GenerateHTML(context.Background(), RenderOptions{
		Values: map[string]string{"Age": "42"},
		Result: &Result{IsDiabetic: false, Probability: 0.1},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, snippet := range []string{
		`name="Age"`,
		`value="42"`,
		"No Diabetes Detected",
		"10.00%",
	} {
		if !strings.Contains(html, snippet) {
			t.Fatalf("expected %q in output", snippet)
		}
	}
}

func TestNewClientRejectsInvalidBase(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); err == nil {
		t.Fatalf("expected invalid base URL error")
	}
	client, err := NewClient("")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.BaseURL() != "http://localhost:8000" {
		t.Fatalf("unexpected default base: %s", client.BaseURL())
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/page.tmpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
	data, err := fs.ReadFile(AssetsFS(), "predictform.css")
	if err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	if !strings.Contains(string(data), ".confidence-fill") {
		t.Fatalf("stylesheet missing confidence bar rules")
	}
}
