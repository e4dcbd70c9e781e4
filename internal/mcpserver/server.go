// Package mcpserver exposes the read side of the workspace as MCP tools so
// assistants can list processed documents and read their extractions.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/history"
	"github.com/akolanti/FormFlow/internal/normalizer"
	"github.com/akolanti/FormFlow/internal/workspace"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

const (
	serverName    = "formflow"
	serverVersion = "v1.0.0"
)

var logger = logger_i.NewLogger("MCP")

type Workspace interface {
	History(ctx context.Context, query string) history.Snapshot
	View(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error)
}

type ListHistoryInput struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive file name filter"`
}

type HistoryItem struct {
	Id              string   `json:"id"`
	FileName        string   `json:"file_name"`
	Status          string   `json:"status"`
	UploadedAt      string   `json:"uploaded_at"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}

type ListHistoryOutput struct {
	Items     []HistoryItem `json:"items"`
	Total     int           `json:"total"`
	LastError string        `json:"last_error,omitempty"`
}

type ExtractionInput struct {
	Id string `json:"id" jsonschema:"form id as shown in the history list"`
}

type RowsOutput struct {
	Id           string           `json:"id"`
	FileName     string           `json:"file_name,omitempty"`
	DocumentKind string           `json:"document_kind"`
	ReviewItems  bool             `json:"review_items"`
	FieldCount   int              `json:"field_count"`
	Rows         []normalizer.Row `json:"rows"`
}

type FormOutput struct {
	Id       string              `json:"id"`
	FileName string              `json:"file_name,omitempty"`
	Form     normalizer.FormView `json:"form"`
}

type tools struct {
	ws Workspace
}

// New builds the server with the workspace tools registered.
func New(ws Workspace) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	t := &tools{ws: ws}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_history",
		Description: "List documents processed by the extraction backend, newest first as the backend returns them.",
	}, t.listHistory)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_extraction_rows",
		Description: "Flattened field/value rows of a completed extraction, in display order.",
	}, t.extractionRows)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_form_view",
		Description: "Sections, tables and key entities of a completed extraction.",
	}, t.formView)
	return server
}

// Serve runs the server on stdio until ctx ends or the client disconnects.
func Serve(ctx context.Context, ws Workspace) error {
	logger.Info("serving MCP on stdio")
	return New(ws).Run(ctx, &mcp.StdioTransport{})
}

func (t *tools) listHistory(ctx context.Context, _ *mcp.CallToolRequest, in ListHistoryInput) (*mcp.CallToolResult, ListHistoryOutput, error) {
	snap := t.ws.History(ctx, in.Query)
	out := ListHistoryOutput{Items: make([]HistoryItem, 0, len(snap.Entries)), Total: snap.Count, LastError: snap.LastError}
	for _, e := range snap.Entries {
		item := HistoryItem{Id: e.Id.String(), FileName: e.FileName, Status: string(e.Status), UploadedAt: e.UploadedAt}
		if e.ExtractionResults != nil {
			item.ConfidenceScore = e.ExtractionResults.ConfidenceScore
		}
		out.Items = append(out.Items, item)
	}
	return nil, out, nil
}

func (t *tools) extractionRows(ctx context.Context, _ *mcp.CallToolRequest, in ExtractionInput) (*mcp.CallToolResult, RowsOutput, error) {
	v, err := t.view(ctx, in.Id, workspace.ViewTable)
	if err != nil {
		return nil, RowsOutput{}, err
	}
	return nil, RowsOutput{Id: v.Id, FileName: v.FileName, DocumentKind: v.DocumentKind, ReviewItems: v.ReviewItems, FieldCount: v.FieldCount, Rows: v.Rows}, nil
}

func (t *tools) formView(ctx context.Context, _ *mcp.CallToolRequest, in ExtractionInput) (*mcp.CallToolResult, FormOutput, error) {
	v, err := t.view(ctx, in.Id, workspace.ViewForm)
	if err != nil {
		return nil, FormOutput{}, err
	}
	return nil, FormOutput{Id: v.Id, FileName: v.FileName, Form: *v.Form}, nil
}

func (t *tools) view(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
	if id == "" {
		return workspace.View{}, errors.New("id is required")
	}
	v, err := t.ws.View(ctx, id, kind)
	switch {
	case err == nil:
		return v, nil
	case formsclient.IsNotReady(err):
		return workspace.View{}, fmt.Errorf("extraction %s is not finished yet", id)
	default:
		logger.Warn("tool call failed", "id", id, "view", kind, "error", err)
		return workspace.View{}, fmt.Errorf("extraction %s: %s", id, formsclient.UserMessage(err, err.Error()))
	}
}
