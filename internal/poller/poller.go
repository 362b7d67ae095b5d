package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/metrics"
)

var (
	ErrAlreadyStarted = errors.New("poller already started")
	ErrNotStarted     = errors.New("poller not started")
)

// Job is one refresh pass.
type Job func(ctx context.Context) error

// Poller runs a job once on Start and then on a fixed interval until
// stopped. A run that is still going when the next tick fires causes that
// tick to be skipped.
type Poller struct {
	name     string
	interval time.Duration
	job      Job
	log      *logger.Logger

	mu      sync.Mutex
	started bool
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(name string, interval time.Duration, job Job) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		job:      job,
		log:      logger.Get().With("component", "poller", "poller", name),
	}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start schedules the job and triggers the first run immediately without
// waiting for it.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	if p.interval <= 0 {
		return fmt.Errorf("poller %s: interval must be positive, got %s", p.name, p.interval)
	}

	cl := cronLogger{p.log}
	// Recover sits inside SkipIfStillRunning so a panic still releases the
	// run slot.
	c := cron.New(cron.WithLogger(cl))
	job := cron.NewChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)).Then(cron.FuncJob(p.run))

	if _, err := c.AddJob(fmt.Sprintf("@every %s", p.interval), job); err != nil {
		return fmt.Errorf("scheduling poller %s: %w", p.name, err)
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.cron = c
	p.started = true

	c.Start()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		job.Run()
	}()

	p.log.Infow("poller started", "interval", p.interval)
	return nil
}

// Stop cancels the running job's context and waits for it to return.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.started = false
	p.cancel()
	c := p.cron
	p.mu.Unlock()

	<-c.Stop().Done()
	p.wg.Wait()
	p.log.Infow("poller stopped")
	return nil
}

func (p *Poller) run() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := p.job(ctx)
	metrics.RecordPollerRun(err)
	if err != nil {
		p.log.Errorw("poll failed", "error", err, "duration", time.Since(start))
		return
	}
	p.log.Debugw("poll completed", "duration", time.Since(start))
}

// cronLogger routes cron's own messages through the application logger.
type cronLogger struct {
	l *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
