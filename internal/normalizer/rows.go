package normalizer

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Row is one flattened field of an extraction. Confidence is passed through
// exactly as the document carried it.
type Row struct {
	Field      string `json:"field"`
	Value      string `json:"value"`
	Confidence any    `json:"confidence,omitempty"`
}

const (
	invalidField    = "Invalid format"
	keyEntitiesName = "Key Entities"
)

// Rows projects a document onto display rows. Order: document type, summary,
// signatures, section fields, table rows, key entities, then any other
// top-level keys in the order the document lists them.
func Rows(doc Document, mode Mode) []Row {
	rows := make([]Row, 0)

	switch doc.Kind {
	case KindInvalid:
		return append(rows, Row{Field: invalidField, Value: doc.Original})
	case KindUnknown:
		return unknownRows(gjson.Parse(doc.Raw), mode)
	}

	if doc.DocumentType != nil {
		rows = append(rows, Row{Field: "Document Type", Value: *doc.DocumentType})
	}
	if doc.Summary != nil {
		rows = append(rows, Row{Field: "Summary", Value: *doc.Summary})
	}
	if doc.SignaturesDetected != nil {
		rows = append(rows, Row{Field: "Signatures Detected", Value: yesNo(*doc.SignaturesDetected)})
	}

	for _, section := range doc.Sections {
		for _, f := range section.Fields {
			rows = append(rows, Row{
				Field:      "[" + section.Name + "] " + f.Label,
				Value:      FormatValue(f.Value, mode),
				Confidence: f.Confidence,
			})
		}
	}

	for _, table := range doc.Tables {
		for i, cells := range table.Rows {
			rows = append(rows, Row{
				Field: "[" + table.Name + "] Row " + strconv.Itoa(i+1),
				Value: formatCells(cells, mode),
			})
		}
	}

	for _, group := range doc.KeyEntities {
		rows = append(rows, Row{
			Field: "[" + keyEntitiesName + "] " + group.Category,
			Value: FormatValue(group.Values, mode),
		})
	}

	for _, e := range doc.Extra {
		rows = flatten(rows, e.Key, e.Value, mode)
	}
	return rows
}

// flatten walks nested objects joining keys with dots. Arrays and scalars are leaves.
func flatten(rows []Row, key string, v gjson.Result, mode Mode) []Row {
	if !v.IsObject() {
		return append(rows, Row{Field: key, Value: FormatValue(v, mode)})
	}
	v.ForEach(func(k, child gjson.Result) bool {
		rows = flatten(rows, key+"."+k.String(), child, mode)
		return true
	})
	return rows
}

func unknownRows(v gjson.Result, mode Mode) []Row {
	if !v.IsArray() {
		return []Row{{Field: "Value", Value: FormatValue(v, mode)}}
	}
	rows := make([]Row, 0)
	for i, item := range v.Array() {
		rows = flatten(rows, strconv.Itoa(i), item, mode)
	}
	return rows
}

func formatCells(cells []Cell, mode Mode) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		parts = append(parts, c.Column+": "+FormatValue(c.Value, mode))
	}
	return strings.Join(parts, "; ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
