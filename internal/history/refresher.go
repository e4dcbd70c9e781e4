package history

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/metrics"
	"github.com/akolanti/FormFlow/internal/poller"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

type Lister interface {
	History(ctx context.Context) ([]formModel.HistoryEntry, error)
}

// Snapshot is the last good history list plus what happened on the latest fetch.
type Snapshot struct {
	Entries   []formModel.HistoryEntry `json:"entries"`
	Count     int                      `json:"count"`
	FetchedAt time.Time                `json:"fetched_at"`
	LastError string                   `json:"last_error,omitempty"`
}

// Refresher re-reads the backend history on its own schedule, independent of
// job polling. Fetch errors keep the previous list.
type Refresher struct {
	lister    Lister
	interval  time.Duration
	newTicker poller.TickerFactory
	logger    *logger_i.Logger

	mu        sync.RWMutex
	entries   []formModel.HistoryEntry
	fetchedAt time.Time
	lastErr   error
	seq       uint64
	applied   uint64

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewRefresher(lister Lister, interval time.Duration, newTicker poller.TickerFactory) *Refresher {
	if interval <= 0 {
		interval = config.DefaultHistoryInterval
	}
	if newTicker == nil {
		newTicker = poller.JitterTicker(config.TickerJitterStdev)
	}
	return &Refresher{
		lister:    lister,
		interval:  interval,
		newTicker: newTicker,
		logger:    logger_i.NewLogger("HistoryRefresher"),
		entries:   []formModel.HistoryEntry{},
		done:      make(chan struct{}),
	}
}

// Start fetches once right away and then on every tick until Stop or ctx ends.
func (r *Refresher) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		ticker := r.newTicker(r.interval)
		go r.run(ctx, ticker)
	})
}

func (r *Refresher) run(ctx context.Context, ticker poller.Ticker) {
	defer close(r.done)
	defer ticker.Stop()

	r.logger.Info("starting history refresher", "interval", r.interval)
	_ = r.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping history refresher")
			return
		case _, ok := <-ticker.C():
			if !ok {
				return
			}
			_ = r.Refresh(ctx)
		}
	}
}

// Stop ends the schedule and waits for it. Calling Stop on a refresher that
// was never started is a no-op.
func (r *Refresher) Stop() {
	started := false
	r.startOnce.Do(func() { close(r.done) })
	r.stopOnce.Do(func() {
		if r.cancel != nil {
			started = true
			r.cancel()
		}
	})
	if started {
		<-r.done
	}
}

// Refresh fetches now. A response older than one already applied is dropped.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	start := time.Now()
	entries, err := r.lister.History(ctx)
	metrics.CaptureExecutionMetrics("history_refresh", time.Since(start))

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq < r.applied {
		return err
	}
	r.applied = seq

	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("history fetch failed", "error", err)
		}
		metrics.CaptureHistoryRefresh("error")
		r.lastErr = err
		return err
	}
	metrics.CaptureHistoryRefresh("ok")
	if entries == nil {
		entries = []formModel.HistoryEntry{}
	}
	r.entries = entries
	r.fetchedAt = time.Now()
	r.lastErr = nil
	return nil
}

func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Snapshot{
		Entries:   append([]formModel.HistoryEntry(nil), r.entries...),
		Count:     len(r.entries),
		FetchedAt: r.fetchedAt,
	}
	if s.Entries == nil {
		s.Entries = []formModel.HistoryEntry{}
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	return s
}

// Filter keeps entries whose file name contains query, ignoring case. The
// count stays the total, as the dashboard badge shows it.
func (s Snapshot) Filter(query string) Snapshot {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return s
	}
	filtered := make([]formModel.HistoryEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if strings.Contains(strings.ToLower(e.FileName), query) {
			filtered = append(filtered, e)
		}
	}
	s.Entries = filtered
	return s
}
