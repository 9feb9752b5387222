package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amoghj8/gradwatch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedFetcher returns one queued error per call, then succeeds.
type scriptedFetcher struct {
	errs  []error
	calls int
}

func (s *scriptedFetcher) Fetch(_ context.Context) ([]byte, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []byte("<html>ok</html>"), nil
}

func TestFetchSucceedsFirstTry(t *testing.T) {
	inner := &scriptedFetcher{}
	f := NewFetcher(inner, 3, time.Millisecond, discardLogger())

	payload, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload) == 0 {
		t.Error("expected payload")
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}

func TestFetchRetriesTransientThenSucceeds(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{
		&model.HTTPError{StatusCode: 503, Err: errors.New("upstream")},
		errors.New("connection reset"),
	}}
	f := NewFetcher(inner, 3, time.Millisecond, discardLogger())

	_, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want 3", inner.calls)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{
		&model.HTTPError{StatusCode: 500, Err: errors.New("a")},
		&model.HTTPError{StatusCode: 502, Err: errors.New("b")},
		&model.HTTPError{StatusCode: 503, Err: errors.New("c")},
	}}
	f := NewFetcher(inner, 2, time.Millisecond, discardLogger())

	_, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want 3 (1 + 2 retries)", inner.calls)
	}

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Errorf("expected the last HTTPError (503), got %v", err)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{
		&model.HTTPError{StatusCode: 404, Err: errors.New("gone")},
	}}
	f := NewFetcher(inner, 3, time.Millisecond, discardLogger())

	_, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1 (4xx is permanent)", inner.calls)
	}
}

func TestFetchRetriesTooManyRequests(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{
		&model.HTTPError{StatusCode: 429, RetryAfter: time.Millisecond, Err: errors.New("slow down")},
	}}
	f := NewFetcher(inner, 3, time.Second, discardLogger())

	start := time.Now()
	_, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
	// Retry-After overrides the (much larger) base delay.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("retry waited %v, Retry-After not honored", elapsed)
	}
}

func TestFetchDoesNotRetryCancellation(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{context.Canceled}}
	f := NewFetcher(inner, 3, time.Millisecond, discardLogger())

	_, err := f.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1 (cancellation is final)", inner.calls)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"429", &model.HTTPError{StatusCode: 429}, true},
		{"500", &model.HTTPError{StatusCode: 500}, true},
		{"503", &model.HTTPError{StatusCode: 503}, true},
		{"403", &model.HTTPError{StatusCode: 403}, false},
		{"404", &model.HTTPError{StatusCode: 404}, false},
		{"network", errors.New("connection refused"), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isRetryable(c.err); got != c.want {
				t.Errorf("isRetryable = %v, want %v", got, c.want)
			}
		})
	}
}
