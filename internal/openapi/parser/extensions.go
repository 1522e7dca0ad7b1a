package parser

import "strings"

const extensionNamespace = "x-formgen"

// extractExtensions keeps the x-formgen namespace (either a nested map or
// flattened x-formgen-* keys) and drops every other vendor extension.
func extractExtensions(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	result := make(map[string]any)
	for key, value := range raw {
		switch {
		case key == extensionNamespace:
			mapped, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for nestedKey, nestedValue := range mapped {
				name := strings.TrimSpace(nestedKey)
				if name == "" || nestedValue == nil {
					continue
				}
				result[extensionNamespace+"-"+name] = nestedValue
			}
		case strings.HasPrefix(key, extensionNamespace+"-"):
			if value != nil {
				result[key] = value
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
