package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// TickInterval is the heartbeat period of the notification screen.
const TickInterval = time.Second

// Poster accepts engine events.
type Poster interface {
	Post(ev Event) bool
}

// Ticker wraps a gocron scheduler posting Tick events.
type Ticker struct {
	scheduler gocron.Scheduler
	jobID     string
}

// NewTicker creates a ticker posting to p every interval. It does not run
// until Start is called.
func NewTicker(p Poster, interval time.Duration) (*Ticker, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { p.Post(Tick{}) }),
		gocron.WithName("screen-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create tick job: %w", err)
	}

	return &Ticker{scheduler: s, jobID: job.ID().String()}, nil
}

// JobID returns the gocron id of the tick job.
func (t *Ticker) JobID() string { return t.jobID }

// Start begins posting ticks.
func (t *Ticker) Start() {
	slog.Debug("Starting tick scheduler", slog.String("job_id", t.jobID))
	t.scheduler.Start()
}

// Stop shuts the scheduler down.
func (t *Ticker) Stop() error {
	slog.Debug("Stopping tick scheduler")
	return t.scheduler.Shutdown()
}
