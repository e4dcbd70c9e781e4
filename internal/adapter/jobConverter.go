package adapter

import (
	"fmt"
	"net/http"

	"github.com/akolanti/FormFlow/internal/api"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/internal/history"
	"github.com/akolanti/FormFlow/internal/workspace"
)

func ToUploadResponse(job jobModel.Job) api.UploadResponse {
	return api.UploadResponse{
		Id:        job.Id,
		Status:    string(job.Status),
		Progress:  job.Progress,
		StatusURL: fmt.Sprintf("jobs/%s", job.Id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	res := api.JobResponse{
		Id:        job.Id,
		FileName:  job.FileName,
		Status:    string(job.Status),
		Progress:  job.Progress,
		Checks:    job.Checks,
		StartTime: job.CreatedTime,
	}
	if job.Error != nil {
		res.Error = &api.JobOutgoingError{Code: job.Error.Code, Message: job.Error.Message}
	}
	if !job.EndTime.IsZero() {
		end := job.EndTime
		res.EndTime = &end
	}
	if job.Status == jobModel.JobStatusCompleted {
		res.ResultURL = fmt.Sprintf("forms/%s/results", job.Id)
	}
	return res
}

func ToHistoryResponse(snap history.Snapshot) api.HistoryResponse {
	items := make([]api.HistoryItem, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		item := api.HistoryItem{
			Id:         e.Id.String(),
			FileName:   e.FileName,
			Status:     string(e.Status),
			UploadedAt: e.UploadedAt,
		}
		if e.ExtractionResults != nil {
			item.ConfidenceScore = e.ExtractionResults.ConfidenceScore
		}
		items = append(items, item)
	}
	res := api.HistoryResponse{Items: items, Count: snap.Count, LastError: snap.LastError}
	if !snap.FetchedAt.IsZero() {
		at := snap.FetchedAt
		res.RefreshedAt = &at
	}
	return res
}

func ToResultViewResponse(v workspace.View) api.ResultViewResponse {
	res := api.ResultViewResponse{
		Id:              v.Id,
		FileName:        v.FileName,
		Status:          string(v.Status),
		ExtractedAt:     v.ExtractedAt,
		ConfidenceScore: v.ConfidenceScore,
		ReviewItems:     v.ReviewItems,
		FieldCount:      v.FieldCount,
		View:            string(v.Kind),
		DocumentKind:    v.DocumentKind,
		Conforms:        v.Conforms,
		ShapeWarning:    v.ShapeWarning,
		Document:        v.Document,
		RawTextSource:   v.RawTextSource,
		Notice:          v.Notice,
	}
	if v.Rows != nil {
		res.Rows = make([]api.ResultRow, 0, len(v.Rows))
		for _, r := range v.Rows {
			res.Rows = append(res.Rows, api.ResultRow{Field: r.Field, Value: r.Value, Confidence: r.Confidence})
		}
	}
	if v.Form != nil {
		res.Form = v.Form
	}
	if v.Kind == workspace.ViewRaw {
		text := v.RawText
		res.RawText = &text
	}
	return res
}

func ToErrorResponse(code int, message string) api.ErrorResponse {
	if message == "" {
		message = http.StatusText(code)
	}
	return api.ErrorResponse{Code: code, Message: message}
}
