package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/metrics"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

// Fetcher is the results endpoint. Any error means "not ready yet" unless the
// failure policy in Options says otherwise.
type Fetcher interface {
	Results(ctx context.Context, id string) (*formModel.ExtractionResult, error)
}

type Options struct {
	Interval time.Duration
	// MaxConsecutiveFailures ends the job with ERROR after this many failed checks
	// in a row. Not-ready answers do not count and reset the run. Zero disables it.
	MaxConsecutiveFailures int
	// FailOnClientError ends the job with ERROR on a 4xx other than 404.
	FailOnClientError bool

	NewTicker TickerFactory
	FileName  string

	// OnUpdate and OnComplete run on the polling goroutine and must not call Stop.
	OnUpdate   func(job jobModel.Job)
	OnComplete func(job jobModel.Job, result *formModel.ExtractionResult)

	// onExit runs on the polling goroutine just before Done closes.
	onExit func(p *Poller)
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = config.DefaultPollInterval
	}
	if o.NewTicker == nil {
		o.NewTicker = JitterTicker(config.TickerJitterStdev)
	}
	return o
}

// Poller owns the recurring results check for one job.
type Poller struct {
	fetcher Fetcher
	opts    Options
	logger  *logger_i.Logger

	mu  sync.RWMutex
	job jobModel.Job

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Start begins polling the results of id. The returned handle must be stopped
// by its owner; a job that never completes is polled until then.
func Start(ctx context.Context, id string, fetcher Fetcher, opts Options) *Poller {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	now := time.Now()
	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	p := &Poller{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger_i.NewLogger("Poller").With("jobId", id, "traceId", traceId),
		job: jobModel.Job{
			Id:          id,
			FileName:    opts.FileName,
			TraceId:     traceId,
			Status:      jobModel.JobStatusProcessing,
			Progress:    config.InitialProgress,
			CreatedTime: now,
			UpdatedTime: now,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ticker := opts.NewTicker(opts.Interval)
	p.notify()
	metrics.IncrementActivePollers()
	go p.run(ctx, ticker)
	return p
}

func (p *Poller) run(ctx context.Context, ticker Ticker) {
	defer close(p.done)
	if p.opts.onExit != nil {
		defer p.opts.onExit(p)
	}
	defer metrics.DecrementActivePollers()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("polling stopped")
			return
		case _, ok := <-ticker.C():
			if !ok || ctx.Err() != nil {
				return
			}
			if finished := p.check(ctx); finished {
				return
			}
		}
	}
}

// check runs one results call and reports whether polling is over.
func (p *Poller) check(ctx context.Context) bool {
	result, err := p.fetcher.Results(ctx, p.job.Id)
	if ctx.Err() != nil {
		return true
	}

	if err == nil {
		metrics.CapturePollCheck("ready")
		p.finish(jobModel.JobStatusCompleted, nil)
		p.logger.Info("extraction ready")
		if p.opts.OnComplete != nil {
			p.opts.OnComplete(p.Snapshot(), result)
		}
		return true
	}

	notReady := formsclient.IsNotReady(err)
	if notReady {
		metrics.CapturePollCheck("not_ready")
	} else {
		metrics.CapturePollCheck("error")
	}

	p.mu.Lock()
	p.job.Checks++
	if notReady {
		p.job.Failures = 0
	} else {
		p.job.Failures++
	}
	failures := p.job.Failures
	p.mu.Unlock()

	if jobErr := p.policyError(err, notReady, failures); jobErr != nil {
		p.logger.Warn("giving up on job", "code", jobErr.Code, "error", err)
		p.finish(jobModel.JobStatusError, jobErr)
		if p.opts.OnComplete != nil {
			p.opts.OnComplete(p.Snapshot(), nil)
		}
		return true
	}

	p.logger.Debug("results not ready", "error", err)
	p.mu.Lock()
	p.job.Progress = min(p.job.Progress+config.ProgressStep, config.ProgressPendingCap)
	p.job.UpdatedTime = time.Now()
	p.mu.Unlock()
	p.notify()
	return false
}

func (p *Poller) policyError(err error, notReady bool, failures int) *jobModel.JobError {
	if notReady {
		return nil
	}
	var apiErr *formsclient.APIError
	code := 0
	if errors.As(err, &apiErr) {
		code = apiErr.StatusCode
	}
	if p.opts.FailOnClientError && formsclient.IsClientError(err) {
		return &jobModel.JobError{Code: code, Message: formsclient.UserMessage(err, err.Error())}
	}
	if p.opts.MaxConsecutiveFailures > 0 && failures >= p.opts.MaxConsecutiveFailures {
		return &jobModel.JobError{Code: code, Message: formsclient.UserMessage(err, err.Error())}
	}
	return nil
}

func (p *Poller) finish(status jobModel.JobStatus, jobErr *jobModel.JobError) {
	now := time.Now()
	p.mu.Lock()
	p.job.Status = status
	p.job.Error = jobErr
	if status == jobModel.JobStatusCompleted {
		p.job.Progress = config.ProgressDone
		p.job.Checks++
		p.job.Failures = 0
	}
	p.job.UpdatedTime = now
	p.job.EndTime = now
	p.mu.Unlock()

	metrics.CaptureJobFinished(string(status))
	p.notify()
}

func (p *Poller) notify() {
	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate(p.Snapshot())
	}
}

// Stop cancels the schedule and any check in flight, then waits for the loop
// to exit. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(p.cancel)
	<-p.done
}

// Done is closed once the poller will make no further calls.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) Snapshot() jobModel.Job {
	p.mu.RLock()
	defer p.mu.RUnlock()
	job := p.job
	if job.Error != nil {
		e := *job.Error
		job.Error = &e
	}
	return job
}
