package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

type never struct{}

func (never) Next(time.Time) time.Time {
	return time.Time{}
}

func TestParseSchedule(t *testing.T) {
	schedule, err := ParseSchedule("*/15 * * * *")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got := schedule.Next(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if want := time.Date(2024, 1, 2, 3, 15, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	for _, spec := range []string{"", "* * * *", "@every 1s", "61 * * * *"} {
		if _, err := ParseSchedule(spec); err == nil {
			t.Errorf("Expected an error for %q", spec)
		}
	}
}

func TestSchedule(t *testing.T) {
	t.Run("RunsUntilCanceled", func(t *testing.T) {
		w, _ := newTestWorker(t, &fakeCapturer{pages: map[string][]byte{
			"a": page(t, 2, 2, 0),
			"b": page(t, 2, 2, 1),
		}})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var outputs []*Output
		err := w.Schedule(ctx, every(time.Millisecond), "a", "b", func(ctx context.Context, output *Output) error {
			outputs = append(outputs, output)
			if len(outputs) == 3 {
				cancel()
			}
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if len(outputs) != 3 {
			t.Fatalf("Expected 3 runs, got %d", len(outputs))
		}
		for _, output := range outputs {
			if output.DiffCount != 1 {
				t.Errorf("Expected 1 difference, got %d", output.DiffCount)
			}
		}
	})

	t.Run("KeepsGoingAfterFailure", func(t *testing.T) {
		w, _ := newTestWorker(t, &fakeCapturer{pages: map[string][]byte{
			"a": page(t, 2, 2, 0),
			"b": page(t, 2, 2, 0),
		}})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		calls := 0
		err := w.Schedule(ctx, every(time.Millisecond), "a", "b", func(ctx context.Context, output *Output) error {
			calls++
			if calls == 2 {
				cancel()
				return nil
			}
			return errors.New("callback rejected")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if calls != 2 {
			t.Errorf("Expected 2 calls, got %d", calls)
		}
	})

	t.Run("NoActivations", func(t *testing.T) {
		w, _ := newTestWorker(t, &fakeCapturer{})
		err := w.Schedule(context.Background(), never{}, "a", "b", nil)
		if err == nil {
			t.Errorf("Expected an error")
		}
	})
}
