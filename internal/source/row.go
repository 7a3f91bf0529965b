// internal/source/row.go
package source

import (
	"strconv"
	"strings"
)

// Row is one loosely-typed record from a source feed. Feeds disagree on
// column naming (spacing, case, underscores), so lookups match against
// normalized column names and numeric parsing is lenient: anything
// unparseable is 0.
type Row map[string]any

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// String returns the first non-empty value matching any of the given column
// names, trimmed. Column names are compared in normalized form.
func (r Row) String(names ...string) string {
	for _, name := range names {
		if v, ok := r[name]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for k, v := range r {
		if _, ok := targets[normalizeColumnName(k)]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// Float returns the first parseable numeric value for the given column
// names, 0 when absent or malformed.
func (r Row) Float(names ...string) float64 {
	return ToNumber(r.String(names...))
}

// Int is Float truncated toward zero.
func (r Row) Int(names ...string) int {
	return int(r.Float(names...))
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	return ""
}

// ToNumber parses operational numeric text: thousands separators stripped,
// malformed input coerced to 0 rather than failing the load.
func ToNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
