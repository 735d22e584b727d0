// Package engine applies planned steps to the machine, in catalog order,
// with per-step retry policies and a journaled outcome report.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/metrics"
	"github.com/archfrog/KioskForge/internal/module"
	"github.com/archfrog/KioskForge/internal/sysexec"
)

// Backoff bounds for until-timeout retries. The delay doubles per attempt so
// a held dpkg lock is probed often at first, then gently.
const (
	backoffBase = 5 * time.Second
	backoffCap  = 60 * time.Second
)

// Engine runs plans. The runner and sleep function are injectable so tests
// can run whole pipelines in microseconds.
type Engine struct {
	log     *zap.Logger
	runner  sysexec.Runner
	journal *Journal // may be nil

	// sleep is replaced in tests; the default honors context cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Engine.
type Option func(*Engine)

func WithJournal(j *Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) { e.sleep = sleep }
}

func New(log *zap.Logger, runner sysexec.Runner, opts ...Option) *Engine {
	e := &Engine{
		log:    log,
		runner: runner,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run applies every applicable module of the catalog to the machine. A failed
// critical step aborts the run and marks all remaining steps skipped;
// non-critical failures are recorded and the run continues. The report is
// journaled if a journal is attached, even for aborted runs.
func (e *Engine) Run(ctx context.Context, cfg *config.Configuration) (*Report, error) {
	report := newReport(cfg.Str("hostname"))
	e.log.Info("pipeline starting",
		zap.String("run_id", report.ID),
		zap.String("hostname", report.Hostname))

	aborted := false
	var abortErr *StepError
	for _, m := range module.Catalog() {
		if !m.AppliesWhen(cfg) {
			continue
		}
		for _, step := range m.Plan(cfg) {
			if aborted {
				report.Steps = append(report.Steps, StepOutcome{
					Module:      m.ID(),
					Description: step.Description,
					State:       StateSkipped,
				})
				continue
			}
			outcome := e.runStep(ctx, m.ID(), step)
			report.Steps = append(report.Steps, outcome)
			if outcome.State == StateFailed {
				report.Success = false
				if step.Critical {
					e.log.Error("critical step failed, aborting run",
						zap.String("module", m.ID()),
						zap.String("step", step.Description),
						zap.String("error", outcome.Error))
					aborted = true
					abortErr = &StepError{
						Module:      m.ID(),
						Description: step.Description,
						Attempts:    outcome.Attempts,
						Err:         errors.New(outcome.Error),
					}
				}
			}
		}
	}

	report.Finished = time.Now().UTC()
	e.log.Info("pipeline finished",
		zap.String("run_id", report.ID),
		zap.Bool("success", report.Success),
		zap.Duration("elapsed", report.Finished.Sub(report.Started)))

	if e.journal != nil {
		if err := e.journal.Save(report); err != nil {
			e.log.Error("journal write failed", zap.Error(err))
		}
	}
	if aborted {
		return report, abortErr
	}
	return report, nil
}

// RunSteps applies an ad-hoc list of steps under one label, with the same
// retry semantics as a full pipeline run. Used by the daily maintenance job,
// which executes a subset of step semantics outside the catalog.
func (e *Engine) RunSteps(ctx context.Context, label string, steps []module.Step) []StepOutcome {
	outcomes := make([]StepOutcome, 0, len(steps))
	for _, step := range steps {
		outcomes = append(outcomes, e.runStep(ctx, label, step))
	}
	return outcomes
}

// runStep drives one step through its retry policy. Every attempt goes
// through the state machine so the journal and logs agree on what happened.
func (e *Engine) runStep(ctx context.Context, moduleID string, step module.Step) StepOutcome {
	machine := newStepMachine(e.log, moduleID, step.Description)
	started := time.Now()
	deadline := started.Add(step.Retry.Timeout)

	e.log.Info(step.Description, zap.String("module", moduleID))

	attempts := 0
	var lastErr error
	for {
		attempts++
		machine.event(ctx, "start")
		err := step.Do(ctx, e.runner)
		if err == nil {
			machine.event(ctx, "succeed")
			metrics.StepsTotal.WithLabelValues(moduleID).Inc()
			return StepOutcome{
				Module:      moduleID,
				Description: step.Description,
				State:       machine.state(),
				Attempts:    attempts,
				Elapsed:     time.Since(started),
			}
		}
		lastErr = err

		delay, retryable := e.nextDelay(step.Retry, attempts, deadline)
		if retryable && ctx.Err() == nil {
			machine.event(ctx, "retry")
			metrics.StepRetries.WithLabelValues(moduleID).Inc()
			e.log.Warn("step failed, retrying",
				zap.String("module", moduleID),
				zap.String("step", step.Description),
				zap.Int("attempt", attempts),
				zap.Duration("delay", delay),
				zap.Error(err))
			if e.sleep(ctx, delay) == nil {
				continue
			}
		}
		break
	}

	if step.Retry.Kind == module.RetryUntilTimeout && ctx.Err() == nil {
		lastErr = &TimeoutError{Budget: step.Retry.Timeout, Err: lastErr}
	}
	machine.event(ctx, "fail")
	metrics.StepsTotal.WithLabelValues(moduleID).Inc()
	metrics.StepsFailed.WithLabelValues(moduleID).Inc()
	return StepOutcome{
		Module:      moduleID,
		Description: step.Description,
		State:       machine.state(),
		Attempts:    attempts,
		Elapsed:     time.Since(started),
		Error:       lastErr.Error(),
	}
}

// nextDelay decides whether another attempt is allowed and how long to wait
// before it. Until-timeout steps back off exponentially from backoffBase up
// to backoffCap; the budget covers the whole step, not a single attempt.
func (e *Engine) nextDelay(policy module.RetryPolicy, attempts int, deadline time.Time) (time.Duration, bool) {
	switch policy.Kind {
	case module.RetryFixed:
		return policy.Delay, attempts < policy.Attempts
	case module.RetryUntilTimeout:
		delay := backoffBase << (attempts - 1)
		if delay > backoffCap || delay <= 0 {
			delay = backoffCap
		}
		return delay, time.Now().Add(delay).Before(deadline)
	default:
		return 0, false
	}
}
