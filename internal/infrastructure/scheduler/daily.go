package scheduler

import (
	"context"
	"sync"
	"time"

	"newsherd/internal/ports"
)

// Clock abstracts wall-clock access so cadence tests run without real waits.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Daily fires once at every local midnight. Jobs run on the driver goroutine,
// so a slow job delays the next fire rather than overlapping it.
type Daily struct {
	clock Clock
	loc   *time.Location

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.ScrapeDriver = (*Daily)(nil)

// NewDaily builds a midnight-aligned driver. A nil clock uses the system
// clock; a nil location uses local time.
func NewDaily(clock Clock, loc *time.Location) *Daily {
	if clock == nil {
		clock = realClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Daily{clock: clock, loc: loc}
}

// Start arms the timer. Calling Start while running is a no-op.
func (d *Daily) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	go d.loop(ctx, d.stop, job)
	return nil
}

func (d *Daily) loop(ctx context.Context, stop chan struct{}, job func(time.Time)) {
	for {
		now := d.clock.Now().In(d.loc)
		wait := d.nextMidnight(now).Sub(now)

		select {
		case t := <-d.clock.After(wait):
			job(t)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

func (d *Daily) nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.loc).AddDate(0, 0, 1)
}

// Stop disarms the timer without touching a job already dispatched. Calling
// Stop while stopped is a no-op.
func (d *Daily) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}

// Running reports whether the timer is armed.
func (d *Daily) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop != nil
}
