package poller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
	"github.com/akolanti/FormFlow/internal/formsclient"
)

type MockFetcher struct {
	calls     int32
	OnResults func(ctx context.Context, call int, id string) (*formModel.ExtractionResult, error)
}

func (m *MockFetcher) Results(ctx context.Context, id string) (*formModel.ExtractionResult, error) {
	call := int(atomic.AddInt32(&m.calls, 1))
	if m.OnResults != nil {
		return m.OnResults(ctx, call, id)
	}
	return nil, &formsclient.APIError{StatusCode: http.StatusNotFound}
}

func (m *MockFetcher) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

// manualTicker hands out ticks only when the test sends them. The channel is
// unbuffered, so a send returns once the loop has taken the tick.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.stopped.Store(true) }

func (m *manualTicker) factory() TickerFactory {
	return func(time.Duration) Ticker { return m }
}

func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not take the tick")
	}
}

type recorder struct {
	mu   sync.Mutex
	jobs []jobModel.Job
}

func (r *recorder) record(job jobModel.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

func (r *recorder) progress() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Progress)
	}
	return out
}

func waitDone(t *testing.T, p *Poller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not finish")
	}
}

func TestPoller_CompletesOnFourthTick(t *testing.T) {
	ticker := newManualTicker()
	rec := &recorder{}
	fetcher := &MockFetcher{
		OnResults: func(ctx context.Context, call int, id string) (*formModel.ExtractionResult, error) {
			if id != "123" {
				t.Errorf("fetched id %q", id)
			}
			if call < 4 {
				return nil, errors.New("not ready")
			}
			return &formModel.ExtractionResult{Id: "123", RawText: "done"}, nil
		},
	}
	var completed atomic.Bool
	var rawText atomic.Value

	p := Start(context.Background(), "123", fetcher, Options{
		NewTicker: ticker.factory(),
		OnUpdate:  rec.record,
		OnComplete: func(_ jobModel.Job, result *formModel.ExtractionResult) {
			if result != nil {
				rawText.Store(result.RawText)
			}
			completed.Store(true)
		},
	})

	for i := 0; i < 4; i++ {
		ticker.tick(t)
	}
	waitDone(t, p)

	got := rec.progress()
	want := []int{10, 20, 30, 40, 100}
	if len(got) != len(want) {
		t.Fatalf("progress = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress = %v, want %v", got, want)
		}
	}

	snap := p.Snapshot()
	if snap.Status != jobModel.JobStatusCompleted || snap.Progress != 100 {
		t.Errorf("final job = %+v", snap)
	}
	if rawText.Load() != "done" {
		t.Errorf("OnComplete result raw text = %v", rawText.Load())
	}
	if !completed.Load() {
		t.Error("OnComplete not called")
	}
	if !ticker.stopped.Load() {
		t.Error("ticker not stopped")
	}

	select {
	case ticker.ch <- time.Now():
		t.Fatal("a tick was taken after completion")
	case <-time.After(50 * time.Millisecond):
	}
	if fetcher.Calls() != 4 {
		t.Errorf("calls = %d, want 4", fetcher.Calls())
	}
}

func TestPoller_ProgressCapsBelowDone(t *testing.T) {
	ticker := newManualTicker()
	rec := &recorder{}
	fetcher := &MockFetcher{}

	p := Start(context.Background(), "1", fetcher, Options{NewTicker: ticker.factory(), OnUpdate: rec.record})
	for i := 0; i < 12; i++ {
		ticker.tick(t)
	}
	p.Stop()

	prev := 0
	for _, v := range rec.progress() {
		if v < prev {
			t.Fatalf("progress went down: %v", rec.progress())
		}
		if v > 90 {
			t.Fatalf("progress passed the pending cap: %v", rec.progress())
		}
		prev = v
	}
	if p.Snapshot().Progress != 90 {
		t.Errorf("progress = %d, want 90", p.Snapshot().Progress)
	}
	if p.Snapshot().Status != jobModel.JobStatusProcessing {
		t.Errorf("status = %s", p.Snapshot().Status)
	}
}

func TestPoller_StopBeforeFirstTick(t *testing.T) {
	ticker := newManualTicker()
	fetcher := &MockFetcher{}

	p := Start(context.Background(), "9", fetcher, Options{NewTicker: ticker.factory()})
	p.Stop()
	p.Stop()

	waitDone(t, p)
	if fetcher.Calls() != 0 {
		t.Errorf("calls = %d, want 0", fetcher.Calls())
	}
	if !ticker.stopped.Load() {
		t.Error("ticker not stopped")
	}
}

func TestPoller_StopCancelsInFlightCheck(t *testing.T) {
	ticker := newManualTicker()
	entered := make(chan struct{})
	fetcher := &MockFetcher{
		OnResults: func(ctx context.Context, call int, id string) (*formModel.ExtractionResult, error) {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	p := Start(context.Background(), "5", fetcher, Options{NewTicker: ticker.factory()})
	ticker.tick(t)
	<-entered
	p.Stop()

	if got := p.Snapshot(); got.Status != jobModel.JobStatusProcessing || got.Progress != 10 {
		t.Errorf("job changed by a cancelled check: %+v", got)
	}
}

func TestPoller_FailurePolicy(t *testing.T) {
	serverErr := &formsclient.APIError{StatusCode: http.StatusInternalServerError}
	notReady := &formsclient.APIError{StatusCode: http.StatusNotFound}
	badRequest := &formsclient.APIError{StatusCode: http.StatusBadRequest, Message: "unknown form"}

	tests := []struct {
		name       string
		opts       Options
		errs       []error
		wantStatus jobModel.JobStatus
		wantCode   int
	}{
		{"defaults absorb everything", Options{}, []error{badRequest, serverErr, serverErr}, jobModel.JobStatusProcessing, 0},
		{"client error is terminal", Options{FailOnClientError: true}, []error{badRequest}, jobModel.JobStatusError, 400},
		{"404 is never terminal", Options{FailOnClientError: true, MaxConsecutiveFailures: 1}, []error{notReady, notReady}, jobModel.JobStatusProcessing, 0},
		{"consecutive failures", Options{MaxConsecutiveFailures: 2}, []error{serverErr, serverErr}, jobModel.JobStatusError, 500},
		{"not ready resets the run", Options{MaxConsecutiveFailures: 2}, []error{serverErr, notReady, serverErr}, jobModel.JobStatusProcessing, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker := newManualTicker()
			fetcher := &MockFetcher{
				OnResults: func(ctx context.Context, call int, id string) (*formModel.ExtractionResult, error) {
					return nil, tt.errs[call-1]
				},
			}
			opts := tt.opts
			opts.NewTicker = ticker.factory()
			p := Start(context.Background(), "7", fetcher, opts)

			for range tt.errs {
				ticker.tick(t)
			}
			if tt.wantStatus == jobModel.JobStatusError {
				waitDone(t, p)
			}
			p.Stop()

			got := p.Snapshot()
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if tt.wantStatus == jobModel.JobStatusError {
				if got.Error == nil || got.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %d", got.Error, tt.wantCode)
				}
			}
		})
	}
}
