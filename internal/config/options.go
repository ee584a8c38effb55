package config

import "strings"

// Options is a loosely typed option bag for parser tuning.
//
// Values arrive via encoding/json, so numbers are float64 and maps are
// map[string]any; the accessors below normalize that and fall back to the
// given default when a key is absent or of the wrong shape.
type Options map[string]any

// Bool returns the named option as a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the named option as an int.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// String returns the named option as a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Rune returns the first rune of the named string option, e.g. a CSV
// delimiter. Empty or missing values yield def.
func (o Options) Rune(key string, def rune) rune {
	s, ok := o[key].(string)
	if !ok || s == "" {
		return def
	}
	return []rune(s)[0]
}

// StringMap returns the named option as a map[string]string. JSON-decoded
// map[string]any values are converted; non-string entries are skipped.
func (o Options) StringMap(key string) map[string]string {
	switch v := o[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

// StringSlice returns the named option as a []string.
func (o Options) StringSlice(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, val := range v {
			if s, ok := val.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// NormalizeHeader converts a raw header cell to the canonical column key:
// trimmed, lower-cased, spaces collapsed to underscores. Mirrors how the
// parsers key columns.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}
