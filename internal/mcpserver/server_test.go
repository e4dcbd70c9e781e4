package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/history"
	"github.com/akolanti/FormFlow/internal/normalizer"
	"github.com/akolanti/FormFlow/internal/workspace"
)

type MockWorkspace struct {
	OnHistory func(ctx context.Context, query string) history.Snapshot
	OnView    func(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error)
}

func (m *MockWorkspace) History(ctx context.Context, query string) history.Snapshot {
	return m.OnHistory(ctx, query)
}

func (m *MockWorkspace) View(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
	return m.OnView(ctx, id, kind)
}

func connect(t *testing.T, ws Workspace) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ss, err := New(ws).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func decode(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestListTools(t *testing.T) {
	cs := connect(t, &MockWorkspace{})
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"list_history", "get_extraction_rows", "get_form_view"}, names)
}

func TestListHistory(t *testing.T) {
	var gotQuery string
	cs := connect(t, &MockWorkspace{OnHistory: func(ctx context.Context, query string) history.Snapshot {
		gotQuery = query
		return history.Snapshot{Entries: []formModel.HistoryEntry{{Id: "3", FileName: "lab.pdf", Status: formModel.StatusCompleted}}, Count: 5}
	}})

	res := call(t, cs, "list_history", map[string]any{"query": "lab"})
	require.False(t, res.IsError)

	var out ListHistoryOutput
	decode(t, res, &out)
	assert.Equal(t, "lab", gotQuery)
	assert.Equal(t, 5, out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "lab.pdf", out.Items[0].FileName)
}

func TestGetExtractionRows(t *testing.T) {
	cs := connect(t, &MockWorkspace{OnView: func(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
		assert.Equal(t, workspace.ViewTable, kind)
		return workspace.View{Id: id, DocumentKind: "structured", Rows: []normalizer.Row{{Field: "Summary", Value: "ok"}}}, nil
	}})

	res := call(t, cs, "get_extraction_rows", map[string]any{"id": "8"})
	require.False(t, res.IsError)

	var out RowsOutput
	decode(t, res, &out)
	assert.Equal(t, "8", out.Id)
	assert.Equal(t, []normalizer.Row{{Field: "Summary", Value: "ok"}}, out.Rows)
}

func TestGetFormView(t *testing.T) {
	cs := connect(t, &MockWorkspace{OnView: func(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
		doc := normalizer.Unwrap([]byte(`{"document_type":"Invoice","sections":[{"section_name":"Vendor","fields":[{"label":"Name","value":"ACME"}]}]}`))
		form := normalizer.Form(doc)
		return workspace.View{Id: id, Kind: kind, Form: &form}, nil
	}})

	res := call(t, cs, "get_form_view", map[string]any{"id": "8"})
	require.False(t, res.IsError)

	var out FormOutput
	decode(t, res, &out)
	assert.Equal(t, "Invoice", out.Form.DocumentType)
	require.Len(t, out.Form.Sections, 1)
	assert.Equal(t, "ACME", out.Form.Sections[0].Fields[0].Value)
}

func TestGetExtractionRows_NotReady(t *testing.T) {
	cs := connect(t, &MockWorkspace{OnView: func(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error) {
		return workspace.View{}, &formsclient.APIError{StatusCode: http.StatusNotFound}
	}})

	res := call(t, cs, "get_extraction_rows", map[string]any{"id": "8"})
	require.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "not finished")
}
