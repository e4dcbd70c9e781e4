package poller

import (
	"context"
	"sync"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

// Manager keeps at most one active poller per job id and mirrors every job
// state change into the JobStore. A poller is forgotten once it exits; the
// store holds its final snapshot.
type Manager struct {
	ctx     context.Context
	fetcher Fetcher
	store   jobModel.JobStore
	opts    Options
	logger  *logger_i.Logger

	mu      sync.Mutex
	pollers map[string]*Poller
}

// NewManager ties every poller it starts to ctx. opts is the template for new
// pollers; its OnUpdate runs after the store write.
func NewManager(ctx context.Context, fetcher Fetcher, store jobModel.JobStore, opts Options) *Manager {
	return &Manager{
		ctx:     ctx,
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		logger:  logger_i.NewLogger("PollerManager"),
		pollers: make(map[string]*Poller),
	}
}

// Start polls id unless a poller for it is still running, in which case that
// poller is returned.
func (m *Manager) Start(ctx context.Context, id, fileName string) *Poller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.pollers[id]; ok && !isDone(existing) {
		return existing
	}

	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	pollCtx := context.WithValue(m.ctx, config.TRACE_ID_KEY, traceId)

	opts := m.opts
	opts.FileName = fileName
	opts.OnUpdate = func(job jobModel.Job) {
		if err := m.store.SaveJob(pollCtx, job); err != nil {
			m.logger.Error("failed to persist job", "jobId", job.Id, "error", err)
		}
		if m.opts.OnUpdate != nil {
			m.opts.OnUpdate(job)
		}
	}
	opts.onExit = func(p *Poller) { m.forget(id, p) }

	p := Start(pollCtx, id, m.fetcher, opts)
	m.pollers[id] = p
	m.logger.Debug("started polling", "jobId", id, "traceId", traceId)
	return p
}

func (m *Manager) Get(id string) (*Poller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pollers[id]
	return p, ok
}

// Stop cancels polling for id and forgets it. It reports whether id was known.
func (m *Manager) Stop(id string) bool {
	m.mu.Lock()
	p, ok := m.pollers[id]
	delete(m.pollers, id)
	m.mu.Unlock()

	if ok {
		p.Stop()
	}
	return ok
}

func (m *Manager) forget(id string, p *Poller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollers[id] == p {
		delete(m.pollers, id)
	}
}

// Tracked counts pollers the manager still holds.
func (m *Manager) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pollers)
}

// Active counts pollers that are still checking.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.pollers {
		if !isDone(p) {
			n++
		}
	}
	return n
}

func (m *Manager) StopAll() {
	m.mu.Lock()
	pollers := m.pollers
	m.pollers = make(map[string]*Poller)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range pollers {
		wg.Add(1)
		go func(p *Poller) {
			defer wg.Done()
			p.Stop()
		}(p)
	}
	wg.Wait()
	m.logger.Info("all pollers stopped", "count", len(pollers))
}

func isDone(p *Poller) bool {
	select {
	case <-p.Done():
		return true
	default:
		return false
	}
}
