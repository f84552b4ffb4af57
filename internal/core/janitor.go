package core

// janitor.go removes what conversions leave behind over time.
//
// Each pass:
//  1. Expires records older than RETENTION_MAX_AGE together with their
//     files (skipped when the max age is zero)
//  2. Removes artifacts whose record no longer exists, such as a workbook
//     published by a download that raced a delete
//  3. Removes temporary files left by interrupted atomic writes
//
// Files younger than RETENTION_ORPHAN_GRACE are never touched so uploads in
// flight keep their PDF. Failures are logged and retried next pass.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Macora01/pdftoexcl/internal/artifacts"
	"github.com/Macora01/pdftoexcl/internal/config"
	"github.com/Macora01/pdftoexcl/internal/store"
)

// Janitor sweeps expired records and stray files on a cron schedule.
type Janitor struct {
	records store.Store
	files   *artifacts.Store
	cfg     config.RetentionConfig
	now     func() time.Time
}

// Janitor returns a janitor over the service's stores.
func (s *Service) Janitor(cfg config.RetentionConfig) *Janitor {
	return &Janitor{
		records: s.records,
		files:   s.files,
		cfg:     cfg,
		now:     s.now,
	}
}

// Run sweeps once immediately, then on every tick of the schedule until ctx
// is cancelled. It only fails on an invalid schedule.
func (j *Janitor) Run(ctx context.Context) error {
	schedule, err := config.ParseSchedule(j.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("parse retention schedule %q: %w", j.cfg.Schedule, err)
	}

	logger := cronLogger{slog.Default().With("component", "janitor")}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(schedule, cron.FuncJob(func() { j.runSweep(ctx) }))

	slog.Info("janitor started",
		"schedule", j.cfg.Schedule,
		"max_age", j.cfg.MaxAge,
		"orphan_grace", j.cfg.OrphanGrace,
	)

	j.runSweep(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("janitor stopped")
	return nil
}

func (j *Janitor) runSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	res, err := j.Sweep(ctx)
	if err != nil {
		slog.Error("janitor sweep incomplete", "error", err)
	}
	slog.Info("janitor sweep completed",
		"expired", res.Expired,
		"orphans", res.Orphans,
		"temp", res.Temp,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Sweep performs one pass. It keeps going past individual failures and
// returns them joined.
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		res  SweepResult
		errs []error
	)
	now := j.now()

	if j.cfg.MaxAge > 0 {
		ids, err := j.records.CreatedBefore(ctx, now.Add(-j.cfg.MaxAge))
		if err != nil {
			errs = append(errs, err)
		}
		for _, id := range ids {
			if err := j.records.Delete(ctx, id); err != nil {
				errs = append(errs, err)
				continue
			}
			if err := j.files.Remove(id); err != nil {
				errs = append(errs, err)
			}
			res.Expired++
		}
	}

	entries, err := j.files.List()
	if err != nil {
		return res, errors.Join(append(errs, err)...)
	}

	cutoff := now.Add(-j.cfg.OrphanGrace)
	known := make(map[string]bool)
	for _, e := range entries {
		if !e.ModTime.Before(cutoff) {
			continue
		}
		if !e.Temp {
			exists, ok := known[e.ID]
			if !ok {
				_, err := j.records.Get(ctx, e.ID)
				switch {
				case err == nil:
					exists = true
				case errors.Is(err, store.ErrNotFound):
					exists = false
				default:
					errs = append(errs, err)
					continue
				}
				known[e.ID] = exists
			}
			if exists {
				continue
			}
		}

		if err := j.files.RemovePath(e.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		if e.Temp {
			res.Temp++
		} else {
			res.Orphans++
		}
	}

	return res, errors.Join(errs...)
}

// cronLogger routes cron's logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
