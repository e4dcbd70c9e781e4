package normalizer

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// maxUnwrap bounds how many times a string payload is re-parsed. The backend
// sometimes encodes the document twice; anything deeper is treated as invalid.
const maxUnwrap = 2

type Kind int

const (
	// KindStructured is a JSON object, possibly with none of the known keys.
	KindStructured Kind = iota
	// KindUnknown is valid JSON that is not an object.
	KindUnknown
	// KindInvalid could not be parsed; Original holds what was received.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindUnknown:
		return "unknown"
	case KindInvalid:
		return "invalid"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Document is the unwrapped extraction payload. Only the fields matching Kind
// are populated.
type Document struct {
	Kind Kind
	// Raw is the unwrapped JSON text for structured and unknown documents.
	Raw string
	// Original is the payload as received, used by the invalid placeholder.
	Original string

	DocumentType       *string
	Summary            *string
	SignaturesDetected *bool
	Sections           []Section
	Tables             []Table
	KeyEntities        []EntityGroup
	Extra              []Entry

	// ShapeErr is set when a structured document does not match the expected
	// extraction layout. It never stops normalization.
	ShapeErr error
}

type Section struct {
	Name   string
	Fields []Field
}

type Field struct {
	Label      string
	Value      gjson.Result
	Confidence any
}

type Table struct {
	Name    string
	Headers []string
	Rows    [][]Cell
}

type Cell struct {
	Column string
	Value  gjson.Result
}

type EntityGroup struct {
	Category string
	Values   gjson.Result
}

// Entry is a top-level key outside the known layout, kept in document order.
type Entry struct {
	Key   string
	Value gjson.Result
}

var (
	sectionKeys      = []string{"sections", "cleaned_sections"}
	sectionNameKeys  = []string{"section_name", "name", "title"}
	fieldLabelKeys   = []string{"field_name", "label", "key"}
	fieldValueKeys   = []string{"field_value", "value"}
	tableNameKeys    = []string{"table_name", "name"}
	consumedTopLevel = map[string]bool{
		"document_type":       true,
		"summary":             true,
		"signatures_detected": true,
		"sections":            true,
		"cleaned_sections":    true,
		"tables":              true,
		"key_entities":        true,
	}
)

const (
	defaultSectionName = "General"
	defaultFieldLabel  = "Field"
)

// Unwrap parses a structuredJson payload into a Document. It never fails:
// unparseable input becomes a KindInvalid document.
func Unwrap(raw []byte) Document {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return Document{Kind: KindStructured, Raw: "{}", Original: text}
	}
	if !gjson.Valid(text) {
		return invalidDocument(text)
	}

	res := gjson.Parse(text)
	original := text
	if res.Type == gjson.String {
		original = res.Str
	}
	for attempt := 0; res.Type == gjson.String && attempt < maxUnwrap; attempt++ {
		inner := strings.TrimSpace(res.Str)
		if !gjson.Valid(inner) {
			return invalidDocument(original)
		}
		res = gjson.Parse(inner)
	}

	switch {
	case res.Type == gjson.String:
		return invalidDocument(original)
	case res.Type == gjson.Null:
		return Document{Kind: KindStructured, Raw: "{}", Original: original}
	case !res.IsObject():
		return Document{Kind: KindUnknown, Raw: res.Raw, Original: original}
	}

	doc := Document{Kind: KindStructured, Raw: res.Raw, Original: original}
	doc.populate(res)
	doc.ShapeErr = checkShape(res)
	return doc
}

func invalidDocument(original string) Document {
	return Document{Kind: KindInvalid, Original: original}
}

func (d *Document) populate(obj gjson.Result) {
	if v := obj.Get("document_type"); present(v) {
		s := FormatValue(v, ModeTable)
		d.DocumentType = &s
	}
	if v := obj.Get("summary"); present(v) {
		s := FormatValue(v, ModeTable)
		d.Summary = &s
	}
	if v := obj.Get("signatures_detected"); v.IsBool() {
		b := v.Bool()
		d.SignaturesDetected = &b
	}

	if sections, ok := firstPresent(obj, sectionKeys); ok && sections.IsArray() {
		for _, s := range sections.Array() {
			d.Sections = append(d.Sections, parseSection(s))
		}
	}

	if tables := obj.Get("tables"); tables.IsArray() {
		for i, t := range tables.Array() {
			d.Tables = append(d.Tables, parseTable(t, i+1))
		}
	}

	if entities := obj.Get("key_entities"); entities.IsObject() {
		entities.ForEach(func(key, value gjson.Result) bool {
			d.KeyEntities = append(d.KeyEntities, EntityGroup{Category: key.String(), Values: value})
			return true
		})
	}

	obj.ForEach(func(key, value gjson.Result) bool {
		if !consumedTopLevel[key.String()] {
			d.Extra = append(d.Extra, Entry{Key: key.String(), Value: value})
		}
		return true
	})
}

func parseSection(s gjson.Result) Section {
	section := Section{Name: defaultSectionName}
	if !s.IsObject() {
		return section
	}
	if name, ok := firstPresent(s, sectionNameKeys); ok {
		section.Name = FormatValue(name, ModeTable)
	}
	fields := s.Get("fields")
	if !fields.IsArray() {
		return section
	}
	for _, f := range fields.Array() {
		section.Fields = append(section.Fields, parseField(f))
	}
	return section
}

func parseField(f gjson.Result) Field {
	field := Field{Label: defaultFieldLabel}
	if !f.IsObject() {
		field.Value = f
		return field
	}
	if label, ok := firstPresent(f, fieldLabelKeys); ok {
		field.Label = FormatValue(label, ModeTable)
	}
	if value, ok := firstPresent(f, fieldValueKeys); ok {
		field.Value = value
	}
	if c := f.Get("confidence"); c.Exists() {
		field.Confidence = c.Value()
	}
	return field
}

func parseTable(t gjson.Result, position int) Table {
	table := Table{Name: "Table " + strconv.Itoa(position)}
	if !t.IsObject() {
		return table
	}
	if name, ok := firstPresent(t, tableNameKeys); ok {
		table.Name = FormatValue(name, ModeTable)
	}
	for _, h := range t.Get("headers").Array() {
		table.Headers = append(table.Headers, FormatValue(h, ModeTable))
	}
	for _, row := range t.Get("rows").Array() {
		table.Rows = append(table.Rows, orderCells(row, table.Headers))
	}
	return table
}

// orderCells lays a row out by the table headers first, then any columns the
// headers do not mention. Array rows are matched to headers by position.
func orderCells(row gjson.Result, headers []string) []Cell {
	var cells []Cell
	if row.IsArray() {
		for i, v := range row.Array() {
			column := "Column " + strconv.Itoa(i+1)
			if i < len(headers) {
				column = headers[i]
			}
			cells = append(cells, Cell{Column: column, Value: v})
		}
		return cells
	}
	if !row.IsObject() {
		return []Cell{{Column: "Value", Value: row}}
	}

	values := make(map[string]gjson.Result)
	var order []string
	row.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, seen := values[k]; !seen {
			order = append(order, k)
		}
		values[k] = value
		return true
	})

	used := make(map[string]bool, len(headers))
	for _, h := range headers {
		if v, ok := values[h]; ok && !used[h] {
			cells = append(cells, Cell{Column: h, Value: v})
			used[h] = true
		}
	}
	for _, k := range order {
		if !used[k] {
			cells = append(cells, Cell{Column: k, Value: values[k]})
			used[k] = true
		}
	}
	return cells
}

// firstPresent returns the value of the first key that is set to something
// other than null or an empty string.
func firstPresent(obj gjson.Result, keys []string) (gjson.Result, bool) {
	for _, k := range keys {
		if v := obj.Get(k); present(v) {
			return v, true
		}
	}
	return gjson.Result{}, false
}

func present(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return false
	}
	return !(v.Type == gjson.String && v.Str == "")
}
