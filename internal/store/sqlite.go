package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amoghj8/gradwatch/internal/model"
)

// SQLiteStore holds every posting ever observed plus the run ledger, in a
// single SQLite database. Single-writer: the process serializes all cycles,
// so no locking beyond SQLite's own is needed.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time // injectable clock for tests
}

// Open opens (or creates) the SQLite database at dbPath and ensures the
// postings and runs tables exist.
func Open(dbPath string) (*SQLiteStore, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// sqlite wants a single writer.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	createPostings := `CREATE TABLE IF NOT EXISTS postings (
		identity   TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		location   TEXT NOT NULL,
		url        TEXT NOT NULL,
		posted_at  TEXT,
		first_seen TEXT NOT NULL,
		last_seen  TEXT NOT NULL
	)`
	if _, err := db.Exec(createPostings); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postings table: %w", err)
	}

	createRuns := `CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		ran_at        TEXT NOT NULL,
		fetched_count INTEGER NOT NULL,
		new_count     INTEGER NOT NULL,
		status        TEXT NOT NULL,
		error_detail  TEXT
	)`
	if _, err := db.Exec(createRuns); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeFormat), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Upsert records one observation of a posting.
//
// Unseen identity: the posting is inserted with first_seen = last_seen = now
// and created is true. Seen identity: only last_seen advances — the values
// recorded at first sight stay authoritative, so a retitled listing does not
// flicker in exports — and created is false. Postings are never deleted here;
// disappearing from the live page is not treated as evidence of removal.
func (s *SQLiteStore) Upsert(p model.Posting) (created bool, stored model.Posting, err error) {
	var exists int
	err = s.db.QueryRow("SELECT 1 FROM postings WHERE identity = ?", p.Identity).Scan(&exists)
	if err == sql.ErrNoRows {
		now := s.now().UTC()
		p.FirstSeen = now
		p.LastSeen = now
		_, err = s.db.Exec(`INSERT INTO postings (identity, title, location, url, posted_at, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Identity, p.Title, p.Location, p.URL, formatTimePtr(p.PostedAt), formatTime(now), formatTime(now),
		)
		if err != nil {
			return false, model.Posting{}, fmt.Errorf("inserting posting %s: %w", p.Identity, err)
		}
		return true, p, nil
	}
	if err != nil {
		return false, model.Posting{}, fmt.Errorf("checking posting %s: %w", p.Identity, err)
	}

	_, err = s.db.Exec("UPDATE postings SET last_seen = ? WHERE identity = ?",
		formatTime(s.now()), p.Identity)
	if err != nil {
		return false, model.Posting{}, fmt.Errorf("touching posting %s: %w", p.Identity, err)
	}

	stored, err = s.Get(p.Identity)
	if err != nil {
		return false, model.Posting{}, fmt.Errorf("re-reading posting %s: %w", p.Identity, err)
	}
	return false, stored, nil
}

// ListAll returns every stored posting ordered by first_seen ascending
// (identity breaks ties, for a stable order within one batch).
func (s *SQLiteStore) ListAll() ([]model.Posting, error) {
	rows, err := s.db.Query(`SELECT identity, title, location, url, posted_at, first_seen, last_seen
		FROM postings ORDER BY first_seen ASC, identity ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var p model.Posting
		var postedAt sql.NullString
		var firstSeen, lastSeen string
		if err := rows.Scan(&p.Identity, &p.Title, &p.Location, &p.URL, &postedAt, &firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		if p.PostedAt, err = parseTimePtr(postedAt); err != nil {
			return nil, fmt.Errorf("parsing posted_at for %s: %w", p.Identity, err)
		}
		if p.FirstSeen, err = parseTime(firstSeen); err != nil {
			return nil, fmt.Errorf("parsing first_seen for %s: %w", p.Identity, err)
		}
		if p.LastSeen, err = parseTime(lastSeen); err != nil {
			return nil, fmt.Errorf("parsing last_seen for %s: %w", p.Identity, err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// Get returns the stored posting for an identity, or sql.ErrNoRows.
func (s *SQLiteStore) Get(identity string) (model.Posting, error) {
	var p model.Posting
	var postedAt sql.NullString
	var firstSeen, lastSeen string
	err := s.db.QueryRow(`SELECT identity, title, location, url, posted_at, first_seen, last_seen
		FROM postings WHERE identity = ?`, identity).
		Scan(&p.Identity, &p.Title, &p.Location, &p.URL, &postedAt, &firstSeen, &lastSeen)
	if err != nil {
		return model.Posting{}, err
	}
	if p.PostedAt, err = parseTimePtr(postedAt); err != nil {
		return model.Posting{}, fmt.Errorf("parsing posted_at for %s: %w", identity, err)
	}
	if p.FirstSeen, err = parseTime(firstSeen); err != nil {
		return model.Posting{}, fmt.Errorf("parsing first_seen for %s: %w", identity, err)
	}
	if p.LastSeen, err = parseTime(lastSeen); err != nil {
		return model.Posting{}, fmt.Errorf("parsing last_seen for %s: %w", identity, err)
	}
	return p, nil
}

// CountPostings returns the number of stored postings.
func (s *SQLiteStore) CountPostings() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM postings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting postings: %w", err)
	}
	return count, nil
}
