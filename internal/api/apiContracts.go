package api

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"Job not found"`
}

type UploadResponse struct {
	Id        string `json:"id" example:"42"`
	Status    string `json:"status" example:"PROCESSING"`
	Progress  int    `json:"progress" example:"10"`
	StatusURL string `json:"status_url" example:"jobs/42"`
}

type JobResponse struct {
	Id        string            `json:"id" example:"42"`
	FileName  string            `json:"file_name,omitempty" example:"invoice.png"`
	Status    string            `json:"status" example:"PROCESSING"`
	Progress  int               `json:"progress" example:"30"`
	Checks    int               `json:"checks" example:"2"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	ResultURL string            `json:"result_url,omitempty" example:"forms/42/results"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"502"`
	Message string `json:"message" example:"Extraction failed"`
}

type HistoryItem struct {
	Id              string   `json:"id" example:"42"`
	FileName        string   `json:"file_name" example:"invoice.png"`
	Status          string   `json:"status" example:"COMPLETED"`
	UploadedAt      string   `json:"uploaded_at" example:"2024-05-01T10:00:00"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty" example:"0.93"`
}

type HistoryResponse struct {
	Items       []HistoryItem `json:"items"`
	Count       int           `json:"count" example:"12"`
	RefreshedAt *time.Time    `json:"refreshed_at,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
}

type ResultRow struct {
	Field      string `json:"field" example:"[Patient] DOB"`
	Value      string `json:"value" example:"1985-05-12"`
	Confidence any    `json:"confidence,omitempty"`
}

// ResultViewResponse carries exactly one of rows, form, document or raw_text,
// depending on the requested view.
type ResultViewResponse struct {
	Id              string   `json:"id" example:"42"`
	FileName        string   `json:"file_name,omitempty" example:"invoice.png"`
	Status          string   `json:"status,omitempty" example:"COMPLETED"`
	ExtractedAt     string   `json:"extracted_at,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty" example:"0.93"`
	ReviewItems     bool     `json:"review_items" example:"false"`
	FieldCount      int      `json:"field_count" example:"12"`
	View            string   `json:"view" example:"table"`
	DocumentKind    string   `json:"document_kind" example:"structured"`
	Conforms        bool     `json:"conforms" example:"true"`
	ShapeWarning    string   `json:"shape_warning,omitempty"`

	Rows          []ResultRow     `json:"rows,omitempty"`
	Form          any             `json:"form,omitempty" swaggertype:"object"`
	Document      json.RawMessage `json:"document,omitempty" swaggertype:"object"`
	RawText       *string         `json:"raw_text,omitempty"`
	RawTextSource string          `json:"raw_text_source,omitempty" example:"backend"`
	Notice        string          `json:"notice,omitempty"`
}
