package formModel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// FormID is the backend's opaque identifier. It arrives as a number today but
// nothing here relies on that.
type FormID string

func (id *FormID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FormID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("form id must be a string or a number")
	}
	*id = FormID(n.String())
	return nil
}

func (id FormID) String() string { return string(id) }

type FormStatus string

const (
	StatusPending    FormStatus = "PENDING"
	StatusProcessing FormStatus = "PROCESSING"
	StatusCompleted  FormStatus = "COMPLETED"
	StatusError      FormStatus = "ERROR"
	StatusFailed     FormStatus = "FAILED"
)

type UploadResponse struct {
	Id     FormID     `json:"id"`
	Status FormStatus `json:"status"`
}

type HistoryEntry struct {
	Id                FormID             `json:"id"`
	FileName          string             `json:"fileName"`
	Status            FormStatus         `json:"status"`
	UploadedAt        string             `json:"uploadedAt"`
	ExtractionResults *ExtractionSummary `json:"extractionResults,omitempty"`
}

type ExtractionSummary struct {
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
}

// ExtractionResult is the payload of GET /forms/{id}/results. StructuredJson is kept
// raw: its shape is not fixed and it is sometimes encoded more than once.
type ExtractionResult struct {
	Id              FormID          `json:"id"`
	FileName        string          `json:"fileName,omitempty"`
	Status          FormStatus      `json:"status,omitempty"`
	ExtractedAt     string          `json:"extractedAt,omitempty"`
	StructuredJson  json.RawMessage `json:"structuredJson"`
	RawText         string          `json:"rawText"`
	ConfidenceScore *float64        `json:"confidenceScore,omitempty"`
	UnclearFields   json.RawMessage `json:"unclearFields,omitempty"`
}

// HasReviewItems mirrors the viewer's "review items detected" banner: any unclear
// fields other than an empty list.
func (r *ExtractionResult) HasReviewItems() bool {
	raw := strings.TrimSpace(string(r.UnclearFields))
	switch raw {
	case "", "null", "[]", `""`, `"[]"`:
		return false
	}
	return true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC3339 and the zone-less local date-times the backend emits.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResultCache holds completed extractions by form id.
type ResultCache interface {
	GetResult(ctx context.Context, id string) (*ExtractionResult, bool)
	SaveResult(ctx context.Context, id string, result *ExtractionResult) error
	DeleteResult(ctx context.Context, id string)
}
