package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/akolanti/FormFlow/internal/api"
	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/internal/export"
	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/handlers"
	"github.com/akolanti/FormFlow/internal/history"
	"github.com/akolanti/FormFlow/internal/middleware"
	"github.com/akolanti/FormFlow/internal/normalizer"
	"github.com/akolanti/FormFlow/internal/sourcetext"
	"github.com/akolanti/FormFlow/internal/workspace"
)

type MockWorkspace struct {
	OnUpload  func(ctx context.Context, fileName string, content []byte) (jobModel.Job, error)
	OnJob     func(ctx context.Context, id string) (jobModel.Job, error)
	OnDismiss func(ctx context.Context, id string) error
	OnHistory func(ctx context.Context, query string) history.Snapshot
	OnView    func(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error)
	OnExport  func(ctx context.Context, id, format string) (export.File, error)
	OnImage   func(ctx context.Context, id string) ([]byte, string, error)
	OnDelete  func(ctx context.Context, id string) error
}

func (m *MockWorkspace) Upload(ctx context.Context, fileName string, content []byte) (jobModel.Job, error) {
	return m.OnUpload(ctx, fileName, content)
}
func (m *MockWorkspace) Job(ctx context.Context, id string) (jobModel.Job, error) {
	return m.OnJob(ctx, id)
}
func (m *MockWorkspace) Dismiss(ctx context.Context, id string) error {
	return m.OnDismiss(ctx, id)
}
func (m *MockWorkspace) History(ctx context.Context, query string) history.Snapshot {
	return m.OnHistory(ctx, query)
}
func (m *MockWorkspace) View(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
	return m.OnView(ctx, id, kind)
}
func (m *MockWorkspace) Export(ctx context.Context, id, format string) (export.File, error) {
	return m.OnExport(ctx, id, format)
}
func (m *MockWorkspace) Image(ctx context.Context, id string) ([]byte, string, error) {
	return m.OnImage(ctx, id)
}
func (m *MockWorkspace) Delete(ctx context.Context, id string) error {
	return m.OnDelete(ctx, id)
}

func newTestRouter(ws handlers.Workspace) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, handlers.NewHandler(ws), middleware.NewIPRateLimiter(rate.Inf, 1))
	return r
}

func multipartBody(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var res api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&MockWorkspace{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestUpload_Accepted(t *testing.T) {
	var gotName string
	var gotTrace any
	ws := &MockWorkspace{OnUpload: func(ctx context.Context, fileName string, content []byte) (jobModel.Job, error) {
		gotName = fileName
		gotTrace = ctx.Value(config.TRACE_ID_KEY)
		return jobModel.Job{Id: "42", Status: jobModel.JobStatusProcessing, Progress: 10}, nil
	}}

	body, ct := multipartBody(t, "file", "invoice.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Trace-Id", "trace-1")
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var res api.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, api.UploadResponse{Id: "42", Status: "PROCESSING", Progress: 10, StatusURL: "jobs/42"}, res)
	assert.Equal(t, "invoice.png", gotName)
	assert.Equal(t, "trace-1", gotTrace)
	assert.Equal(t, "trace-1", rec.Header().Get("X-Trace-Id"))
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"unsupported type", fmt.Errorf("%w: got text/plain", sourcetext.ErrUnsupportedType), http.StatusBadRequest, "only images and PDF files are supported: got text/plain"},
		{"too large", sourcetext.ErrFileTooLarge, http.StatusBadRequest, sourcetext.ErrFileTooLarge.Error()},
		{"server message", &formsclient.APIError{StatusCode: 500, Message: "storage full"}, http.StatusBadGateway, "storage full"},
		{"no server message", &formsclient.APIError{StatusCode: 500}, http.StatusBadGateway, config.UploadFailedNotice},
		{"unreachable", fmt.Errorf("dial tcp: connection refused"), http.StatusBadGateway, config.UploadFailedNotice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &MockWorkspace{OnUpload: func(ctx context.Context, fileName string, content []byte) (jobModel.Job, error) {
				return jobModel.Job{}, tt.err
			}}
			body, ct := multipartBody(t, "file", "a.png", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/uploads", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			newTestRouter(ws).ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			res := decodeError(t, rec)
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	called := false
	ws := &MockWorkspace{OnUpload: func(ctx context.Context, fileName string, content []byte) (jobModel.Job, error) {
		called = true
		return jobModel.Job{}, nil
	}}
	body, ct := multipartBody(t, "document", "a.png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestGetJob(t *testing.T) {
	end := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ws := &MockWorkspace{OnJob: func(ctx context.Context, id string) (jobModel.Job, error) {
		if id != "42" {
			return jobModel.Job{}, fmt.Errorf("%w: %s", workspace.ErrJobNotFound, id)
		}
		return jobModel.Job{Id: "42", Status: jobModel.JobStatusCompleted, Progress: 100, EndTime: end}, nil
	}}
	router := newTestRouter(ws)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 100, res.Progress)
	assert.Equal(t, "forms/42/results", res.ResultURL)
	require.NotNil(t, res.EndTime)
	assert.True(t, end.Equal(*res.EndTime))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", decodeError(t, rec).Message)
}

func TestDismissJob(t *testing.T) {
	var dismissed string
	ws := &MockWorkspace{OnDismiss: func(ctx context.Context, id string) error {
		dismissed = id
		return nil
	}}
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/jobs/42", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", dismissed)
}

func TestHistory(t *testing.T) {
	score := 0.8
	var gotQuery string
	ws := &MockWorkspace{OnHistory: func(ctx context.Context, query string) history.Snapshot {
		gotQuery = query
		return history.Snapshot{
			Entries: []formModel.HistoryEntry{{Id: "1", FileName: "lab.png", Status: formModel.StatusCompleted,
				ExtractionResults: &formModel.ExtractionSummary{ConfidenceScore: &score}}},
			Count:     3,
			FetchedAt: time.Now(),
		}
	}}
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?q=lab", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res api.HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "lab", gotQuery)
	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 0.8, *res.Items[0].ConfidenceScore)
	assert.NotNil(t, res.RefreshedAt)
}

func TestHistory_EmptyListIsArray(t *testing.T) {
	ws := &MockWorkspace{OnHistory: func(ctx context.Context, query string) history.Snapshot {
		return history.Snapshot{}
	}}
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestResults(t *testing.T) {
	ws := &MockWorkspace{OnView: func(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
		if id == "9" {
			return workspace.View{}, &formsclient.APIError{StatusCode: http.StatusNotFound}
		}
		return workspace.View{
			Id:   id,
			Kind: kind,
			Rows: []normalizer.Row{{Field: "[Patient] DOB", Value: "1985-05-12", Confidence: 0.9}},
		}, nil
	}}
	router := newTestRouter(ws)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/4/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.ResultViewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "table", res.View)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "1985-05-12", res.Rows[0].Value)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/4/results?view=grid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/9/results", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Processing not finished", decodeError(t, rec).Message)
}

func TestResults_RawTextNotice(t *testing.T) {
	ws := &MockWorkspace{OnView: func(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
		return workspace.View{Id: id, Kind: kind, Notice: config.NoRawTextNotice}, nil
	}}
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/4/results?view=raw", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res api.ResultViewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.NotNil(t, res.RawText)
	assert.Empty(t, *res.RawText)
	assert.Equal(t, config.NoRawTextNotice, res.Notice)
}

func TestExport(t *testing.T) {
	ws := &MockWorkspace{OnExport: func(ctx context.Context, id, format string) (export.File, error) {
		if format == "pdf" {
			return export.File{}, fmt.Errorf("%w: %q", workspace.ErrUnknownFormat, format)
		}
		return export.File{Name: "extraction_" + id + ".csv", ContentType: "text/csv", Data: []byte("Field,Value\n")}, nil
	}}
	router := newTestRouter(ws)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/5/export/csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="extraction_5.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Field,Value\n", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/5/export/pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImage(t *testing.T) {
	ws := &MockWorkspace{OnImage: func(ctx context.Context, id string) ([]byte, string, error) {
		return []byte("img"), "image/jpeg", nil
	}}
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/5/image", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "img", rec.Body.String())
}

func TestImage_SniffsMissingContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	ws := &MockWorkspace{OnImage: func(ctx context.Context, id string) ([]byte, string, error) {
		return png, "", nil
	}}
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/5/image", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestDeleteForm_InvalidID(t *testing.T) {
	ws := &MockWorkspace{OnDelete: func(ctx context.Context, id string) error {
		return formsclient.ValidateID(id)
	}}
	rec := httptest.NewRecorder()
	newTestRouter(ws).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/forms/..", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteForm(t *testing.T) {
	ws := &MockWorkspace{OnDelete: func(ctx context.Context, id string) error {
		if id == "5" {
			return nil
		}
		return &formsclient.APIError{StatusCode: 500, Message: "locked"}
	}}
	router := newTestRouter(ws)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/forms/5", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/forms/6", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "locked", decodeError(t, rec).Message)
}

func TestRateLimit(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, handlers.NewHandler(&MockWorkspace{}), middleware.NewIPRateLimiter(rate.Limit(0.001), 1))

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusTooManyRequests, decodeError(t, second).Code)
}
