// Package poll drives a generation job to a terminal state by querying its
// status at a fixed interval under a fixed attempt ceiling.
package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/melodysnap-api/internal/generation"
	"github.com/phrazzld/melodysnap-api/internal/redact"
)

// Defaults used when a Config field is zero.
const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 60
)

// Config bounds one polling cycle.
type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

// Budget is the worst-case wall time of a cycle.
func (c Config) Budget() time.Duration {
	return time.Duration(c.MaxAttempts) * c.Interval
}

// Result is the outcome of a successful cycle.
type Result struct {
	URL      string
	Variants []generation.Variant
	Attempts int
	Elapsed  time.Duration
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Poller queries a StatusQuerier until the job succeeds, fails, or the
// attempt budget is spent.
type Poller struct {
	querier generation.StatusQuerier
	config  Config
	logger  *slog.Logger
	sleep   SleepFunc
	now     func() time.Time
}

// New creates a Poller. Zero config fields take the package defaults.
func New(querier generation.StatusQuerier, cfg Config, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		querier: querier,
		config:  cfg,
		logger:  logger.With("component", "poller"),
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// WithSleep replaces the wait between attempts. Intended for tests.
func (p *Poller) WithSleep(fn SleepFunc) *Poller {
	p.sleep = fn
	return p
}

// Config returns the effective configuration.
func (p *Poller) Config() Config {
	return p.config
}

// Poll queries the job until it reaches a terminal state.
//
// Every query consumes one attempt whatever its outcome; transport errors are
// logged and treated like a running job. A failed job ends the cycle at once
// with *generation.PollFailureError. When all attempts are spent the cycle
// ends with *generation.PollTimeoutError. onAttempt, if non-nil, is called
// with the 1-based attempt number after every query.
func (p *Poller) Poll(ctx context.Context, jobID string, onAttempt func(attempt int)) (*Result, error) {
	logger := p.logger.With("job_id", jobID)
	start := p.now()

	for attempt := 0; attempt < p.config.MaxAttempts; attempt++ {
		status, err := p.querier.QueryStatus(ctx, jobID)
		if err == nil && status == nil {
			err = generation.ErrInvalidResponse
		}
		if onAttempt != nil {
			onAttempt(attempt + 1)
		}

		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("polling job %s: %w", jobID, ctxErr)
			}
			logger.WarnContext(ctx, "status query failed, will retry",
				"attempt", attempt+1,
				"error", redact.Error(err))

		case status.State == generation.JobStateFailed:
			logger.InfoContext(ctx, "generation job failed",
				"attempt", attempt+1,
				"state", status.RawState)
			return nil, &generation.PollFailureError{JobID: jobID, Reason: status.ErrorMessage}

		case status.State == generation.JobStateSucceeded && status.FirstAudioURL() != "":
			elapsed := p.now().Sub(start)
			logger.InfoContext(ctx, "generation job succeeded",
				"attempt", attempt+1,
				"elapsed", elapsed)
			return &Result{
				URL:      status.FirstAudioURL(),
				Variants: status.Variants,
				Attempts: attempt + 1,
				Elapsed:  elapsed,
			}, nil

		default:
			logger.DebugContext(ctx, "generation job still running",
				"attempt", attempt+1,
				"state", status.RawState)
		}

		if attempt+1 < p.config.MaxAttempts {
			if err := p.sleep(ctx, p.config.Interval); err != nil {
				return nil, fmt.Errorf("polling job %s: %w", jobID, err)
			}
		}
	}

	logger.WarnContext(ctx, "generation job did not finish in time",
		"attempts", p.config.MaxAttempts,
		"budget", p.config.Budget())
	return nil, &generation.PollTimeoutError{
		JobID:    jobID,
		Attempts: p.config.MaxAttempts,
		Budget:   p.config.Budget(),
	}
}

// sleepContext waits for d unless ctx is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsTimeout reports whether err ends a cycle because the budget ran out.
func IsTimeout(err error) bool {
	var te *generation.PollTimeoutError
	return errors.As(err, &te)
}
