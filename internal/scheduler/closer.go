package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ExpiredCloser is the slice of the outing service the closer needs.
type ExpiredCloser interface {
	CloseExpired(now time.Time) (int, error)
}

// Closer periodically closes open outings whose start time has passed. The
// clock is injected and the last run is tracked on the instance, so tests
// can drive it directly and nothing lives in package-level state.
type Closer struct {
	outings ExpiredCloser
	now     func() time.Time
	cron    *cron.Cron

	mu      sync.Mutex
	lastRun time.Time
}

func NewCloser(outings ExpiredCloser) *Closer {
	return &Closer{
		outings: outings,
		now:     time.Now,
	}
}

// Run executes one close pass. Exposed for tests and for a manual trigger.
func (c *Closer) Run() {
	now := c.now()

	closed, err := c.outings.CloseExpired(now)
	if err != nil {
		log.Printf("outing auto-close failed: %v", err)
		return
	}

	c.mu.Lock()
	c.lastRun = now
	c.mu.Unlock()

	if closed > 0 {
		log.Printf("outing auto-close: closed %d outings", closed)
	}
}

// LastRun reports when the last successful pass happened.
func (c *Closer) LastRun() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun
}

// Start schedules the close pass on the given cron spec ("@hourly" in the
// default deployment) and runs once immediately to catch up after downtime.
func (c *Closer) Start(spec string) error {
	c.cron = cron.New()
	if _, err := c.cron.AddFunc(spec, c.Run); err != nil {
		return err
	}
	c.cron.Start()
	go c.Run()
	return nil
}

func (c *Closer) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}
