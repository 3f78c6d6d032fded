package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/xerrors"
)

// ParseSchedule parses a standard five field cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(spec)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Schedule runs Process at every activation of schedule until ctx is done and
// hands each output to handle. A failed run is logged and the next one is
// still waited for.
func (w *Worker) Schedule(ctx context.Context, schedule cron.Schedule, baseline string, target string, handle func(context.Context, *Output) error) error {
	for {
		now := w.clock()
		next := schedule.Next(now)
		if next.IsZero() {
			return xerrors.New("schedule has no further activations")
		}

		w.logger().DebugContext(ctx, "waiting for next run", "next", next)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		output, err := w.Process(ctx, baseline, target)
		if err == nil {
			err = handle(ctx, output)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger().ErrorContext(ctx, "scheduled run failed", "error", err)
		}
	}
}
