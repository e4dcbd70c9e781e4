package poller

import (
	"time"

	"github.com/lthibault/jitterbug/v2"
)

// Ticker is the schedule driving a poller. Ticks that arrive while a check is
// still running are dropped by the underlying implementation.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(interval time.Duration) Ticker

type jitterTicker struct {
	t *jitterbug.Ticker
}

func (j jitterTicker) C() <-chan time.Time { return j.t.C }
func (j jitterTicker) Stop()               { j.t.Stop() }

// JitterTicker spreads ticks around the interval so many pollers started together
// do not hit the backend in lockstep.
func JitterTicker(stdev time.Duration) TickerFactory {
	return func(interval time.Duration) Ticker {
		return jitterTicker{t: jitterbug.New(interval, &jitterbug.Norm{Stdev: stdev, Mean: 0})}
	}
}
