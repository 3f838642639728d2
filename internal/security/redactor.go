package security

import "regexp"

const redacted = "[REDACTED]"

// SecretRedactor masks credentials in text before it is persisted.
type SecretRedactor struct {
	keyed    *regexp.Regexp
	patterns []*regexp.Regexp
}

// NewSecretRedactor creates a redactor with patterns for common secrets.
func NewSecretRedactor() *SecretRedactor {
	return &SecretRedactor{
		// key=value style: the key name is kept, the value masked.
		keyed: regexp.MustCompile(`(?i)((?:api[_-]?key|access[_-]?token|auth[_-]?token|secret|password|passwd)\s*[:=]\s*["']?)([a-zA-Z0-9_\-\.]{8,})`),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9_\-\.]{10,256}`),
			regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
			regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36}`),
			regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
			regexp.MustCompile(`sk-[a-zA-Z0-9]{32,}`),
			regexp.MustCompile(`xox[baprs]-[a-zA-Z0-9\-]{10,}`),
			regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`),
		},
	}
}

// Redact returns text with every recognised secret replaced.
func (r *SecretRedactor) Redact(text string) string {
	if text == "" {
		return text
	}
	out := r.keyed.ReplaceAllString(text, "${1}"+redacted)
	for _, p := range r.patterns {
		out = p.ReplaceAllString(out, redacted)
	}
	return out
}

// RedactMap redacts every string value of m, recursing into nested maps
// and slices. m is not modified.
func (r *SecretRedactor) RedactMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = r.redactValue(v)
	}
	return out
}

func (r *SecretRedactor) redactValue(v any) any {
	switch val := v.(type) {
	case string:
		return r.Redact(val)
	case map[string]any:
		return r.RedactMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.redactValue(item)
		}
		return out
	default:
		return v
	}
}
