package formsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/metrics"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

// API is what the workspace needs from the forms backend.
type API interface {
	Upload(ctx context.Context, fileName string, content []byte) (formModel.UploadResponse, error)
	History(ctx context.Context) ([]formModel.HistoryEntry, error)
	Results(ctx context.Context, id string) (*formModel.ExtractionResult, error)
	Image(ctx context.Context, id string) ([]byte, string, error)
	Delete(ctx context.Context, id string) error
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *logger_i.Logger
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: u,
		http:    httpClient,
		logger:  logger_i.NewLogger("FormsClient"),
	}, nil
}

func (c *Client) Upload(ctx context.Context, fileName string, content []byte) (formModel.UploadResponse, error) {
	var res formModel.UploadResponse

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(config.UploadFormField, fileName)
	if err != nil {
		return res, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return res, fmt.Errorf("copying file into multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return res, fmt.Errorf("closing multipart writer: %w", err)
	}

	body, _, err := c.do(ctx, "upload", http.MethodPost, c.endpoint("forms", "upload"), &buf, mw.FormDataContentType())
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return res, fmt.Errorf("decode upload response: %w", err)
	}
	if res.Id == "" {
		return res, fmt.Errorf("upload response carries no id")
	}
	return res, nil
}

func (c *Client) History(ctx context.Context) ([]formModel.HistoryEntry, error) {
	body, _, err := c.do(ctx, "history", http.MethodGet, c.endpoint("forms", "history"), nil, "")
	if err != nil {
		return nil, err
	}
	entries := make([]formModel.HistoryEntry, 0)
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

func (c *Client) Results(ctx context.Context, id string) (*formModel.ExtractionResult, error) {
	target, err := c.formEndpoint(id, "results")
	if err != nil {
		return nil, err
	}
	body, _, err := c.do(ctx, "results", http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}
	var res formModel.ExtractionResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if res.Id == "" {
		res.Id = formModel.FormID(id)
	}
	return &res, nil
}

func (c *Client) Image(ctx context.Context, id string) ([]byte, string, error) {
	target, err := c.formEndpoint(id, "image")
	if err != nil {
		return nil, "", err
	}
	return c.do(ctx, "image", http.MethodGet, target, nil, "")
}

func (c *Client) Delete(ctx context.Context, id string) error {
	target, err := c.formEndpoint(id)
	if err != nil {
		return err
	}
	_, _, err = c.do(ctx, "delete", http.MethodDelete, target, nil, "")
	return err
}

func (c *Client) endpoint(parts ...string) string {
	return c.baseURL.JoinPath(parts...).String()
}

// formEndpoint builds /forms/{id}/rest. JoinPath cleans dot segments, so an id
// must be one plain segment or the request would land on another resource.
func (c *Client) formEndpoint(id string, rest ...string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return c.endpoint(append([]string{"forms", id}, rest...)...), nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body io.Reader, contentType string) ([]byte, string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("forms_"+op, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("build %s request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		req.Header.Set("X-Trace-Id", trace)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.logger.Debug("backend answered with error", "op", op, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, "", apiErr
	}
	return data, resp.Header.Get("Content-Type"), nil
}
