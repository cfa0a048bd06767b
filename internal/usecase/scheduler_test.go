package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsherd/internal/domain"
)

// fakeDriver hands the registered job back to the test for manual firing.
type fakeDriver struct {
	job     func(time.Time)
	running bool
}

func (d *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	if d.running {
		return nil
	}
	d.job = job
	d.running = true
	return nil
}

func (d *fakeDriver) Stop() error {
	d.running = false
	return nil
}

func (d *fakeDriver) Running() bool { return d.running }

func TestSchedulerFireRunsIncrementalScrape(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	store := &fakeStore{}
	scraper := newTestScraper(fetcher, store, &fakeAdapter{name: "hn"})
	driver := &fakeDriver{}
	sched := NewScheduler(driver, scraper, nil)

	require.NoError(t, sched.Start(context.Background()))
	require.True(t, sched.Running())

	driver.job(time.Now())
	assert.Equal(t, 1, fetcher.count(), "a scheduled fire is an incremental (single page) run")
	assert.Len(t, store.saved, 1)
}

func TestSchedulerSurvivesFailedRun(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{failOn: 1}
	scraper := newTestScraper(fetcher, &fakeStore{}, &fakeAdapter{name: "hn"})
	driver := &fakeDriver{}
	sched := NewScheduler(driver, scraper, nil)

	require.NoError(t, sched.Start(context.Background()))

	driver.job(time.Now())
	assert.True(t, sched.Running(), "a failed run must not disarm the timer")

	// The next fire still executes.
	driver.job(time.Now())
	assert.Equal(t, 2, fetcher.count())
}

func TestSchedulerSkipsFireDuringInFlightRun(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	scraper := newTestScraper(fetcher, &fakeStore{}, &fakeAdapter{name: "hn"})
	driver := &fakeDriver{}
	sched := NewScheduler(driver, scraper, nil)
	require.NoError(t, sched.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		driver.job(time.Now())
		close(done)
	}()
	<-fetcher.entered

	// Manual trigger while the timer-driven run is in flight.
	_, err := scraper.Run(context.Background(), domain.ModeIncremental)
	assert.ErrorIs(t, err, domain.ErrScrapeInProgress)
	assert.Equal(t, 1, fetcher.count(), "no second concurrent run may start")

	close(fetcher.release)
	<-done
}

func TestSchedulerStopDoesNotCancelDispatchedRun(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	store := &fakeStore{}
	scraper := newTestScraper(fetcher, store, &fakeAdapter{name: "hn"})
	driver := &fakeDriver{}
	sched := NewScheduler(driver, scraper, nil)
	require.NoError(t, sched.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		driver.job(time.Now())
		close(done)
	}()
	<-fetcher.entered

	require.NoError(t, sched.Stop())
	assert.False(t, sched.Running())

	close(fetcher.release)
	<-done
	assert.Len(t, store.saved, 1, "the dispatched run completes after Stop")
}
