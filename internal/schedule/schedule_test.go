package schedule

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNextPicksEarliestDailyTime(t *testing.T) {
	s, err := New([]string{"09:00", "15:00", "21:00"}, false, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		after    time.Time
		wantHour int
	}{
		{time.Date(2026, 8, 29, 8, 0, 0, 0, time.Local), 9},
		{time.Date(2026, 8, 29, 9, 0, 1, 0, time.Local), 15},
		{time.Date(2026, 8, 29, 16, 30, 0, 0, time.Local), 21},
		// Past the last slot, the next fire rolls over to tomorrow morning.
		{time.Date(2026, 8, 29, 22, 0, 0, 0, time.Local), 9},
	}
	for _, c := range cases {
		next := s.Next(c.after)
		if next.Hour() != c.wantHour || next.Minute() != 0 {
			t.Errorf("Next(%v) = %v, want hour %02d:00", c.after, next, c.wantHour)
		}
		if !next.After(c.after) {
			t.Errorf("Next(%v) = %v is not in the future", c.after, next)
		}
	}
}

func TestNextRollsOverMidnight(t *testing.T) {
	s, err := New([]string{"21:00"}, false, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	after := time.Date(2026, 8, 29, 23, 59, 0, 0, time.Local)
	next := s.Next(after)
	if next.Day() != 30 || next.Hour() != 21 {
		t.Errorf("Next(%v) = %v, want 21:00 on the 30th", after, next)
	}
}

func TestNewRejectsInvalidTimes(t *testing.T) {
	for _, times := range [][]string{
		nil,
		{},
		{"9am"},
		{"25:00"},
		{"09:60"},
	} {
		if _, err := New(times, false, discardLogger()); err == nil {
			t.Errorf("New(%v) succeeded, want error", times)
		}
	}
}

func TestRunOnStartFiresImmediately(t *testing.T) {
	s, err := New([]string{"09:00"}, true, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ran := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		_ = s.Run(ctx, func(_ context.Context) {
			ran <- struct{}{}
		})
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("run_on_start task did not fire")
	}
	cancel()
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New([]string{"09:00"}, false, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(_ context.Context) {
			t.Error("task fired without its scheduled time arriving")
		})
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on cancel, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
