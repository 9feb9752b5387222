package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/amoghj8/gradwatch/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makePosting(identity, title string) model.Posting {
	return model.Posting{
		Identity: identity,
		Title:    title,
		Location: "San Francisco, CA",
		URL:      "https://example.com/jobs/" + identity,
	}
}

func TestUpsertCreatesNewPosting(t *testing.T) {
	s := newTestStore(t)

	created, stored, err := s.Upsert(makePosting("id:123", "Software Engineer"))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !created {
		t.Error("expected created=true for unseen identity")
	}
	if stored.FirstSeen.IsZero() || !stored.FirstSeen.Equal(stored.LastSeen) {
		t.Errorf("expected first_seen == last_seen on creation, got %v / %v", stored.FirstSeen, stored.LastSeen)
	}
}

func TestUpsertReappearanceTouchesLastSeenOnly(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	if _, _, err := s.Upsert(makePosting("id:123", "Software Engineer")); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	// Same identity reappears later, with a slightly rephrased title.
	s.now = func() time.Time { return base.Add(6 * time.Hour) }
	reworded := makePosting("id:123", "Software Engineer (New Grad)")

	created, stored, err := s.Upsert(reworded)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if created {
		t.Error("expected created=false for seen identity")
	}
	if stored.Title != "Software Engineer" {
		t.Errorf("first-seen title should be authoritative, got %q", stored.Title)
	}
	if !stored.FirstSeen.Equal(base) {
		t.Errorf("first_seen changed: got %v, want %v", stored.FirstSeen, base)
	}
	if !stored.LastSeen.Equal(base.Add(6 * time.Hour)) {
		t.Errorf("last_seen should advance: got %v", stored.LastSeen)
	}
}

func TestUpsertNeverDuplicatesIdentity(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if _, _, err := s.Upsert(makePosting("id:123", "Software Engineer")); err != nil {
			t.Fatalf("Upsert %d: %v", i, err)
		}
	}

	count, err := s.CountPostings()
	if err != nil {
		t.Fatalf("CountPostings: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 posting, got %d", count)
	}
}

func TestListAllOrderedByFirstSeen(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"id:c", "id:a", "id:b"} {
		tick := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return tick }
		if _, _, err := s.Upsert(makePosting(id, "Engineer "+id)); err != nil {
			t.Fatalf("Upsert %s: %v", id, err)
		}
	}

	postings, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(postings) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(postings))
	}

	// Insertion order, not identity order.
	want := []string{"id:c", "id:a", "id:b"}
	for i, p := range postings {
		if p.Identity != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p.Identity, want[i])
		}
	}
}

func TestListAllReflectsEveryUpsert(t *testing.T) {
	s := newTestStore(t)

	seen := map[string]bool{}
	batches := [][]string{
		{"id:a", "id:b"},
		{"id:a", "id:b", "id:c"},
		{"id:c", "id:d"},
	}

	for _, batch := range batches {
		for _, id := range batch {
			if _, _, err := s.Upsert(makePosting(id, "Engineer")); err != nil {
				t.Fatalf("Upsert %s: %v", id, err)
			}
			seen[id] = true
		}

		postings, err := s.ListAll()
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		// Monotonic history: everything ever upserted is still there.
		if len(postings) != len(seen) {
			t.Fatalf("expected %d postings, got %d", len(seen), len(postings))
		}
		for _, p := range postings {
			if !seen[p.Identity] {
				t.Errorf("unexpected identity %s", p.Identity)
			}
		}
	}
}

func TestAppendRunAndListRecent(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	statuses := []string{model.StatusSuccess, model.StatusFetchFailed, model.StatusSuccess}
	for i, status := range statuses {
		err := s.AppendRun(model.RunRecord{
			RanAt:        base.Add(time.Duration(i) * time.Hour),
			FetchedCount: 10,
			NewCount:     i,
			Status:       status,
		})
		if err != nil {
			t.Fatalf("AppendRun %d: %v", i, err)
		}
	}

	runs, err := s.ListRecentRuns(2)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].RanAt.After(runs[1].RanAt) {
		t.Errorf("expected newest first, got %v then %v", runs[0].RanAt, runs[1].RanAt)
	}
	if runs[0].NewCount != 2 {
		t.Errorf("expected newest run new_count=2, got %d", runs[0].NewCount)
	}
	if runs[0].ID == "" {
		t.Error("expected ledger to assign a run ID")
	}
}

func TestAppendRunKeepsErrorDetail(t *testing.T) {
	s := newTestStore(t)

	err := s.AppendRun(model.RunRecord{
		Status:      model.StatusFetchFailed,
		ErrorDetail: "HTTP 503",
	})
	if err != nil {
		t.Fatalf("AppendRun: %v", err)
	}

	runs, err := s.ListRecentRuns(1)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ErrorDetail != "HTTP 503" {
		t.Errorf("error detail = %q, want %q", runs[0].ErrorDetail, "HTTP 503")
	}
	if runs[0].RanAt.IsZero() {
		t.Error("expected ledger to stamp ran_at")
	}
}
