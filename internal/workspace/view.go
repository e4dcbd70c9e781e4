package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/normalizer"
)

type ViewKind string

const (
	ViewTable ViewKind = "table"
	ViewForm  ViewKind = "form"
	ViewJSON  ViewKind = "json"
	ViewRaw   ViewKind = "raw"
)

const (
	RawTextFromBackend  = "backend"
	RawTextFromDocument = "document"
)

// ParseView defaults to the table view, the dashboard's first tab.
func ParseView(s string) (ViewKind, error) {
	switch v := ViewKind(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewTable, nil
	case ViewTable, ViewForm, ViewJSON, ViewRaw:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// View is one rendering of an extraction plus the metadata every tab shows.
type View struct {
	Id              string
	FileName        string
	Status          formModel.FormStatus
	ExtractedAt     string
	ConfidenceScore *float64
	ReviewItems     bool
	// FieldCount is the number of table rows, whatever view was asked for.
	FieldCount int
	Kind       ViewKind

	DocumentKind string
	Conforms     bool
	ShapeWarning string

	Rows     []normalizer.Row
	Form     *normalizer.FormView
	Document json.RawMessage

	RawText       string
	RawTextSource string
	Notice        string
}

func (s *Service) View(ctx context.Context, id string, kind ViewKind) (View, error) {
	res, err := s.Result(ctx, id)
	if err != nil {
		return View{}, err
	}

	doc := normalizer.Unwrap(res.StructuredJson)
	if doc.ShapeErr != nil {
		s.logger.Warn("extraction does not match the expected layout", "id", id, "error", doc.ShapeErr)
	}

	rows := normalizer.Rows(doc, normalizer.ModeTable)
	v := View{
		Id:              id,
		FileName:        res.FileName,
		Status:          res.Status,
		ExtractedAt:     res.ExtractedAt,
		ConfidenceScore: res.ConfidenceScore,
		ReviewItems:     res.HasReviewItems(),
		FieldCount:      len(rows),
		Kind:            kind,
		DocumentKind:    doc.Kind.String(),
		Conforms:        doc.Kind == normalizer.KindStructured && doc.ShapeErr == nil,
	}
	if doc.ShapeErr != nil {
		v.ShapeWarning = doc.ShapeErr.Error()
	}

	switch kind {
	case ViewTable:
		v.Rows = rows
	case ViewForm:
		form := normalizer.Form(doc)
		v.Form = &form
	case ViewJSON:
		v.Document = doc.JSON()
	case ViewRaw:
		v.RawText, v.RawTextSource = s.rawText(ctx, id, res)
		if v.RawText == "" {
			v.Notice = config.NoRawTextNotice
		}
	default:
		return View{}, fmt.Errorf("%w: %q", ErrUnknownView, kind)
	}
	return v, nil
}
