package normalizer

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Mode selects how nested objects are rendered into a single cell.
type Mode int

const (
	// ModeTable renders objects as compact JSON.
	ModeTable Mode = iota
	// ModeForm renders objects as "key: value" lines.
	ModeForm
)

// FormatValue turns any JSON value into display text without dropping information.
func FormatValue(v gjson.Result, mode Mode) string {
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return ""
	case v.Type == gjson.String:
		return v.Str
	case v.Type == gjson.Number:
		return v.Raw
	case v.IsBool():
		if v.Bool() {
			return "true"
		}
		return "false"
	case v.IsArray():
		items := v.Array()
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item.IsObject() {
				parts = append(parts, compact(item))
				continue
			}
			parts = append(parts, FormatValue(item, mode))
		}
		return strings.Join(parts, ", ")
	case v.IsObject():
		if mode == ModeTable {
			return compact(v)
		}
		var lines []string
		v.ForEach(func(key, value gjson.Result) bool {
			text := FormatValue(value, ModeTable)
			lines = append(lines, key.String()+": "+text)
			return true
		})
		return strings.Join(lines, "\n")
	}
	return v.String()
}

func compact(v gjson.Result) string {
	return gjson.Get(v.Raw, "@ugly").Raw
}
