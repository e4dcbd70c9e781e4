package normalizer

import "github.com/tidwall/gjson"

// FormView is the nested section/field projection used by the insight view.
type FormView struct {
	Kind               string        `json:"kind"`
	DocumentType       string        `json:"document_type,omitempty"`
	Summary            string        `json:"summary,omitempty"`
	SignaturesDetected *bool         `json:"signatures_detected,omitempty"`
	Sections           []FormSection `json:"sections"`
	Tables             []FormTable   `json:"tables"`
	KeyEntities        []FormEntity  `json:"key_entities"`
	Other              []Row         `json:"other"`
}

type FormSection struct {
	Name   string      `json:"name"`
	Fields []FormField `json:"fields"`
}

type FormField struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	Confidence any    `json:"confidence,omitempty"`
}

type FormTable struct {
	Name    string              `json:"name"`
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}

type FormEntity struct {
	Category string   `json:"category"`
	Values   []string `json:"values"`
}

func Form(doc Document) FormView {
	view := FormView{
		Kind:        doc.Kind.String(),
		Sections:    make([]FormSection, 0, len(doc.Sections)),
		Tables:      make([]FormTable, 0, len(doc.Tables)),
		KeyEntities: make([]FormEntity, 0, len(doc.KeyEntities)),
		Other:       make([]Row, 0),
	}

	if doc.Kind != KindStructured {
		view.Other = Rows(doc, ModeForm)
		return view
	}

	if doc.DocumentType != nil {
		view.DocumentType = *doc.DocumentType
	}
	if doc.Summary != nil {
		view.Summary = *doc.Summary
	}
	view.SignaturesDetected = doc.SignaturesDetected

	for _, s := range doc.Sections {
		fs := FormSection{Name: s.Name, Fields: make([]FormField, 0, len(s.Fields))}
		for _, f := range s.Fields {
			fs.Fields = append(fs.Fields, FormField{
				Label:      f.Label,
				Value:      FormatValue(f.Value, ModeForm),
				Confidence: f.Confidence,
			})
		}
		view.Sections = append(view.Sections, fs)
	}

	for _, t := range doc.Tables {
		ft := FormTable{Name: t.Name, Headers: t.Headers, Rows: make([]map[string]string, 0, len(t.Rows))}
		if ft.Headers == nil {
			ft.Headers = []string{}
		}
		for _, cells := range t.Rows {
			row := make(map[string]string, len(cells))
			for _, c := range cells {
				row[c.Column] = FormatValue(c.Value, ModeForm)
			}
			ft.Rows = append(ft.Rows, row)
		}
		view.Tables = append(view.Tables, ft)
	}

	for _, g := range doc.KeyEntities {
		view.KeyEntities = append(view.KeyEntities, FormEntity{Category: g.Category, Values: entityValues(g.Values)})
	}

	for _, e := range doc.Extra {
		view.Other = flatten(view.Other, e.Key, e.Value, ModeForm)
	}
	return view
}

func entityValues(v gjson.Result) []string {
	if !v.IsArray() {
		if s := FormatValue(v, ModeForm); s != "" {
			return []string{s}
		}
		return []string{}
	}
	values := make([]string, 0)
	for _, item := range v.Array() {
		values = append(values, FormatValue(item, ModeForm))
	}
	return values
}
