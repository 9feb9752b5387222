package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amoghj8/gradwatch/internal/model"
)

// NewRunID generates a new ULID-based run identifier. ULIDs sort by creation
// time, which keeps the ledger's most-recent-first queries stable.
func NewRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// AppendRun inserts one run record into the ledger. The ledger is
// append-only: records are never updated or deleted.
func (s *SQLiteStore) AppendRun(run model.RunRecord) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.RanAt.IsZero() {
		run.RanAt = s.now().UTC()
	}

	_, err := s.db.Exec(`INSERT INTO runs (id, ran_at, fetched_count, new_count, status, error_detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.RanAt), run.FetchedCount, run.NewCount, run.Status, nullString(run.ErrorDetail),
	)
	if err != nil {
		return fmt.Errorf("appending run record: %w", err)
	}
	return nil
}

// ListRecentRuns returns the most recent run records, newest first.
// limit <= 0 means no limit.
func (s *SQLiteStore) ListRecentRuns(limit int) ([]model.RunRecord, error) {
	q := `SELECT id, ran_at, fetched_count, new_count, status, error_detail
		FROM runs ORDER BY ran_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		var ranAt string
		var detail sql.NullString
		if err := rows.Scan(&r.ID, &ranAt, &r.FetchedCount, &r.NewCount, &r.Status, &detail); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		if r.RanAt, err = parseTime(ranAt); err != nil {
			return nil, fmt.Errorf("parsing ran_at for %s: %w", r.ID, err)
		}
		if detail.Valid {
			r.ErrorDetail = detail.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
