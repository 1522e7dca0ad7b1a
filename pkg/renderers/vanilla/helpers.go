package vanilla

import (
	"strings"
	"unicode"
)

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("pf-")
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteByte('-')
	}
	return b.String()
}

func errorID(name string) string {
	id := controlID(name)
	if id == "" {
		return ""
	}
	return id + "-error"
}

func metadataOr(meta map[string]string, key, fallback string) string {
	if value := strings.TrimSpace(meta[key]); value != "" {
		return value
	}
	return fallback
}
