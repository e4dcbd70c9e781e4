package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// encode wraps s in one JSON string layer, the way the backend ships structuredJson.
func encode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return b
}

const patientDoc = `{"sections":[{"section_name":"Patient Information","fields":[{"field_name":"Patient Name","field_value":"John Doe","confidence":0.98}]}]}`

func TestUnwrap_SingleAndDoubleEncoded(t *testing.T) {
	plain := Unwrap([]byte(patientDoc))
	once := Unwrap(encode(t, patientDoc))
	twice := Unwrap(encode(t, string(encode(t, patientDoc))))

	for _, doc := range []Document{plain, once, twice} {
		assert.Equal(t, KindStructured, doc.Kind)
		assert.JSONEq(t, patientDoc, doc.Raw)
	}
}

func TestUnwrap_TripleEncodedIsInvalid(t *testing.T) {
	triple := encode(t, string(encode(t, string(encode(t, `{"a":1}`)))))
	doc := Unwrap(triple)
	assert.Equal(t, KindInvalid, doc.Kind)
}

func TestUnwrap_Idempotent(t *testing.T) {
	inputs := map[string][]byte{
		"object":         []byte(patientDoc),
		"string encoded": encode(t, patientDoc),
		"double encoded": encode(t, string(encode(t, `{"summary":"x","extra":{"k":[1,2]}}`))),
		"array":          []byte(`[1,{"a":"b"}]`),
		"empty object":   []byte(`{}`),
		"null":           []byte(`null`),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			first := Unwrap(in)
			second := Unwrap([]byte(first.Raw))
			assert.Equal(t, first.Kind, second.Kind)
			assert.Equal(t, first.Raw, second.Raw)
			assert.Equal(t, Rows(first, ModeTable), Rows(second, ModeTable))
		})
	}
}

func TestRows_UnparseableInputGivesOneErrorRow(t *testing.T) {
	inputs := [][]byte{
		[]byte(`{not json`),
		encode(t, "definitely not json"),
		encode(t, `{"half":`),
	}
	for _, in := range inputs {
		var rows []Row
		require.NotPanics(t, func() { rows = Rows(Unwrap(in), ModeTable) })
		require.Len(t, rows, 1)
		assert.Equal(t, "Invalid format", rows[0].Field)
	}
}

func TestRows_InvalidKeepsOriginal(t *testing.T) {
	doc := Unwrap(encode(t, "definitely not json"))
	assert.Equal(t, "definitely not json", Rows(doc, ModeTable)[0].Value)
	assert.JSONEq(t, `{"error":"Invalid format","raw":"definitely not json"}`, string(doc.JSON()))
}

func TestRows_EmptyDocuments(t *testing.T) {
	for _, in := range []string{`{}`, ``, `null`, `"{}"`} {
		rows := Rows(Unwrap([]byte(in)), ModeTable)
		assert.NotNil(t, rows, in)
		assert.Empty(t, rows, in)
	}
}

func TestRows_SectionField(t *testing.T) {
	rows := Rows(Unwrap(encode(t, patientDoc)), ModeTable)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{Field: "[Patient Information] Patient Name", Value: "John Doe", Confidence: 0.98}, rows[0])
}

func TestRows_AliasFallback(t *testing.T) {
	in := `{"sections":[{"name":"Demographics","fields":[{"label":"DOB","value":"1985-05-12"},{"key":"Sex","field_value":"F"},{}]}]}`
	rows := Rows(Unwrap([]byte(in)), ModeTable)
	require.Len(t, rows, 3)
	assert.Equal(t, Row{Field: "[Demographics] DOB", Value: "1985-05-12"}, rows[0])
	assert.Equal(t, Row{Field: "[Demographics] Sex", Value: "F"}, rows[1])
	assert.Equal(t, Row{Field: "[Demographics] Field", Value: ""}, rows[2])
}

func TestRows_SectionNameDefaultsToGeneral(t *testing.T) {
	in := `{"sections":[{"fields":[{"field_name":"Total","field_value":12.50}]}]}`
	rows := Rows(Unwrap([]byte(in)), ModeTable)
	require.Len(t, rows, 1)
	assert.Equal(t, "[General] Total", rows[0].Field)
	assert.Equal(t, "12.50", rows[0].Value)
}

func TestRows_CleanedSectionsUsedOnlyWhenSectionsAbsent(t *testing.T) {
	both := `{"sections":[{"section_name":"A","fields":[{"field_name":"x","field_value":"1"}]}],"cleaned_sections":[{"section_name":"B","fields":[{"field_name":"y","field_value":"2"}]}]}`
	rows := Rows(Unwrap([]byte(both)), ModeTable)
	require.Len(t, rows, 1)
	assert.Equal(t, "[A] x", rows[0].Field)

	onlyCleaned := `{"cleaned_sections":[{"section_name":"B","fields":[{"field_name":"y","field_value":"2"}]}]}`
	rows = Rows(Unwrap([]byte(onlyCleaned)), ModeTable)
	require.Len(t, rows, 1)
	assert.Equal(t, "[B] y", rows[0].Field)
}

func TestRows_Order(t *testing.T) {
	in := `{
		"summary": "S",
		"zeta": {"b": 1, "a": {"c": "d"}},
		"document_type": "Invoice",
		"signatures_detected": false,
		"key_entities": {"dates": ["2024-01-01", "2024-02-01"], "organizations": ["Acme"]},
		"tables": [{"table_name": "Items", "headers": ["qty", "desc"], "rows": [{"desc": "Bolt", "qty": 2, "note": "x"}]}],
		"sections": [{"section_name": "Vendor", "fields": [{"field_name": "Name", "field_value": "Acme", "confidence": "high"}]}],
		"alpha": [1, 2]
	}`
	doc := Unwrap([]byte(in))
	assert.NoError(t, doc.ShapeErr)

	want := []Row{
		{Field: "Document Type", Value: "Invoice"},
		{Field: "Summary", Value: "S"},
		{Field: "Signatures Detected", Value: "No"},
		{Field: "[Vendor] Name", Value: "Acme", Confidence: "high"},
		{Field: "[Items] Row 1", Value: "qty: 2; desc: Bolt; note: x"},
		{Field: "[Key Entities] dates", Value: "2024-01-01, 2024-02-01"},
		{Field: "[Key Entities] organizations", Value: "Acme"},
		{Field: "zeta.b", Value: "1"},
		{Field: "zeta.a.c", Value: "d"},
		{Field: "alpha", Value: "1, 2"},
	}
	assert.Equal(t, want, Rows(doc, ModeTable))
}

func TestRows_UnknownShapes(t *testing.T) {
	rows := Rows(Unwrap([]byte(`42`)), ModeTable)
	assert.Equal(t, []Row{{Field: "Value", Value: "42"}}, rows)

	rows = Rows(Unwrap([]byte(`["a",{"b":true}]`)), ModeTable)
	assert.Equal(t, []Row{{Field: "0", Value: "a"}, {Field: "1.b", Value: "true"}}, rows)
}

func TestRows_DoesNotMutateInput(t *testing.T) {
	in := []byte(patientDoc)
	before := string(in)
	_ = Rows(Unwrap(in), ModeForm)
	assert.Equal(t, before, string(in))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		mode Mode
		want string
	}{
		{"string", `"abc"`, ModeTable, "abc"},
		{"number keeps text", `1.50`, ModeTable, "1.50"},
		{"bool", `true`, ModeTable, "true"},
		{"null", `null`, ModeTable, ""},
		{"array", `["a", 2, null]`, ModeTable, "a, 2, "},
		{"objects inside array", `[{"a": 1}, "b"]`, ModeForm, `{"a":1}, b`},
		{"object in table", `{"street": "Main", "no": 5}`, ModeTable, `{"street":"Main","no":5}`},
		{"object in form", `{"street": "Main", "no": 5}`, ModeForm, "street: Main\nno: 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(gjson.Parse(tt.raw), tt.mode))
		})
	}
}

func TestForm(t *testing.T) {
	in := `{"document_type":"Lab Report","signatures_detected":true,
		"sections":[{"section_name":"Patient","fields":[{"field_name":"Address","field_value":{"city":"Pune","zip":"411001"},"confidence":"medium"}]}],
		"tables":[{"headers":["test","result"],"rows":[["Hb","13.2"]]}],
		"key_entities":{"dates":["2024-03-01"]},
		"notes":"fasting"}`
	view := Form(Unwrap([]byte(in)))

	assert.Equal(t, "structured", view.Kind)
	assert.Equal(t, "Lab Report", view.DocumentType)
	require.NotNil(t, view.SignaturesDetected)
	assert.True(t, *view.SignaturesDetected)

	require.Len(t, view.Sections, 1)
	assert.Equal(t, FormField{Label: "Address", Value: "city: Pune\nzip: 411001", Confidence: "medium"}, view.Sections[0].Fields[0])

	require.Len(t, view.Tables, 1)
	assert.Equal(t, "Table 1", view.Tables[0].Name)
	assert.Equal(t, map[string]string{"test": "Hb", "result": "13.2"}, view.Tables[0].Rows[0])

	assert.Equal(t, []FormEntity{{Category: "dates", Values: []string{"2024-03-01"}}}, view.KeyEntities)
	assert.Equal(t, []Row{{Field: "notes", Value: "fasting"}}, view.Other)
}

func TestForm_InvalidDocument(t *testing.T) {
	view := Form(Unwrap([]byte(`{oops`)))
	assert.Equal(t, "invalid", view.Kind)
	require.Len(t, view.Other, 1)
	assert.Empty(t, view.Sections)
}

func TestShapeCheck(t *testing.T) {
	assert.NoError(t, Unwrap([]byte(patientDoc)).ShapeErr)

	doc := Unwrap([]byte(`{"sections":"not a list","summary":"kept"}`))
	assert.Error(t, doc.ShapeErr)
	assert.Equal(t, []Row{{Field: "Summary", Value: "kept"}}, Rows(doc, ModeTable))
}

func TestPretty(t *testing.T) {
	out, err := Unwrap(encode(t, `{"b":1,"a":[1]}`)).Pretty()
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    1\n  ]\n}\n", string(out))
}
