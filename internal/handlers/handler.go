package handlers

import (
	"context"

	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/internal/export"
	"github.com/akolanti/FormFlow/internal/history"
	"github.com/akolanti/FormFlow/internal/workspace"
)

// Workspace is the part of workspace.Service the HTTP surface needs.
type Workspace interface {
	Upload(ctx context.Context, fileName string, content []byte) (jobModel.Job, error)
	Job(ctx context.Context, id string) (jobModel.Job, error)
	Dismiss(ctx context.Context, id string) error
	History(ctx context.Context, query string) history.Snapshot
	View(ctx context.Context, id string, kind workspace.ViewKind) (workspace.View, error)
	Export(ctx context.Context, id, format string) (export.File, error)
	Image(ctx context.Context, id string) ([]byte, string, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	service Workspace
}

func NewHandler(service Workspace) *Handler {
	logRH.Info("Starting request handler")
	return &Handler{service: service}
}
