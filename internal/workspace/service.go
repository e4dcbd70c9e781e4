package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/internal/export"
	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/history"
	"github.com/akolanti/FormFlow/internal/normalizer"
	"github.com/akolanti/FormFlow/internal/poller"
	"github.com/akolanti/FormFlow/internal/sourcetext"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrUnknownView   = errors.New("unknown view")
	ErrUnknownFormat = export.ErrUnknownFormat
)

type Service struct {
	client  formsclient.API
	pollers *poller.Manager
	history *history.Refresher
	jobs    jobModel.JobStore
	results formModel.ResultCache
	logger  *logger_i.Logger
}

type ServiceConfig struct {
	Client      formsclient.API
	JobStore    jobModel.JobStore
	ResultCache formModel.ResultCache

	PollOptions     poller.Options
	HistoryInterval time.Duration
	// HistoryTicker defaults to the jittered ticker.
	HistoryTicker poller.TickerFactory
}

// InitWorkspaceService wires the poller manager and history refresher to ctx;
// both stop when it ends or on Shutdown.
func InitWorkspaceService(ctx context.Context, cfg ServiceConfig) *Service {
	s := &Service{
		client:  cfg.Client,
		jobs:    cfg.JobStore,
		results: cfg.ResultCache,
		logger:  logger_i.NewLogger("Workspace"),
	}

	opts := cfg.PollOptions
	userComplete := opts.OnComplete
	opts.OnComplete = func(job jobModel.Job, result *formModel.ExtractionResult) {
		s.onJobFinished(ctx, job, result)
		if userComplete != nil {
			userComplete(job, result)
		}
	}
	s.pollers = poller.NewManager(ctx, cfg.Client, cfg.JobStore, opts)
	s.history = history.NewRefresher(cfg.Client, cfg.HistoryInterval, cfg.HistoryTicker)
	return s
}

func (s *Service) Start(ctx context.Context) {
	s.history.Start(ctx)
}

func (s *Service) Shutdown() {
	s.pollers.StopAll()
	s.history.Stop()
	s.logger.Info("workspace stopped")
}

func (s *Service) onJobFinished(ctx context.Context, job jobModel.Job, result *formModel.ExtractionResult) {
	if result != nil {
		if err := s.results.SaveResult(ctx, job.Id, result); err != nil {
			s.logger.Warn("could not cache result", "jobId", job.Id, "error", err)
		}
	}
	// the history list carries the new status; do not wait for the next tick
	if err := s.history.Refresh(ctx); err != nil {
		s.logger.Debug("history refresh after completion failed", "error", err)
	}
}

// Upload checks the file, sends it to the backend and starts polling for its result.
func (s *Service) Upload(ctx context.Context, fileName string, content []byte) (jobModel.Job, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "file", fileName)

	src, err := sourcetext.ValidateUpload(fileName, content)
	if err != nil {
		log.Warn("upload rejected", "error", err)
		return jobModel.Job{}, err
	}

	res, err := s.client.Upload(ctx, fileName, content)
	if err != nil {
		log.Error("upload to backend failed", "error", err)
		return jobModel.Job{}, err
	}

	p := s.pollers.Start(ctx, res.Id.String(), fileName)
	log.Info("upload accepted", "jobId", res.Id, "contentType", src.ContentType)
	return p.Snapshot(), nil
}

func (s *Service) Job(ctx context.Context, id string) (jobModel.Job, error) {
	if p, ok := s.pollers.Get(id); ok {
		return p.Snapshot(), nil
	}
	if job, ok := s.jobs.GetJob(ctx, id); ok {
		return job, nil
	}
	return jobModel.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// Wait blocks until the job's poller finishes or ctx ends, returning the
// latest snapshot either way.
func (s *Service) Wait(ctx context.Context, id string) (jobModel.Job, error) {
	p, ok := s.pollers.Get(id)
	if !ok {
		return s.Job(ctx, id)
	}
	select {
	case <-p.Done():
		return p.Snapshot(), nil
	case <-ctx.Done():
		return p.Snapshot(), ctx.Err()
	}
}

// Dismiss stops polling id and forgets the job. The extraction itself is kept.
func (s *Service) Dismiss(ctx context.Context, id string) error {
	stopped := s.pollers.Stop(id)
	_, stored := s.jobs.GetJob(ctx, id)
	if !stopped && !stored {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	s.jobs.DeleteJob(ctx, id)
	return nil
}

// History serves the refresher's list, fetching once if it has never run.
func (s *Service) History(ctx context.Context, query string) history.Snapshot {
	snap := s.history.Snapshot()
	if snap.FetchedAt.IsZero() {
		_ = s.history.Refresh(ctx)
		snap = s.history.Snapshot()
	}
	return snap.Filter(query)
}

// Result returns a completed extraction, from the cache when possible.
func (s *Service) Result(ctx context.Context, id string) (*formModel.ExtractionResult, error) {
	if res, ok := s.results.GetResult(ctx, id); ok {
		return res, nil
	}
	res, err := s.client.Results(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.results.SaveResult(ctx, id, res); err != nil {
		s.logger.Warn("could not cache result", "id", id, "error", err)
	}
	return res, nil
}

func (s *Service) Export(ctx context.Context, id, format string) (export.File, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return export.File{}, err
	}
	res, err := s.Result(ctx, id)
	if err != nil {
		return export.File{}, err
	}
	return export.Render(export.Source{
		ID:       id,
		Document: normalizer.Unwrap(res.StructuredJson),
		RawText:  res.RawText,
	}, f)
}

func (s *Service) Image(ctx context.Context, id string) ([]byte, string, error) {
	return s.client.Image(ctx, id)
}

// Delete removes the extraction from the backend and every local trace of it.
// A failed backend delete leaves local state and any running poller untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, id); err != nil {
		return err
	}
	s.pollers.Stop(id)
	s.jobs.DeleteJob(ctx, id)
	s.results.DeleteResult(ctx, id)
	if err := s.history.Refresh(ctx); err != nil {
		s.logger.Debug("history refresh after delete failed", "error", err)
	}
	return nil
}

// rawText prefers the backend's text and falls back to reading the source document.
func (s *Service) rawText(ctx context.Context, id string, res *formModel.ExtractionResult) (text, source string) {
	if strings.TrimSpace(res.RawText) != "" {
		return res.RawText, RawTextFromBackend
	}
	content, _, err := s.client.Image(ctx, id)
	if err != nil {
		s.logger.Debug("source document unavailable for raw text", "id", id, "error", err)
		return "", ""
	}
	text, err = sourcetext.Extract(ctx, res.FileName, content)
	if err != nil {
		return "", ""
	}
	return text, RawTextFromDocument
}
