package model

import (
	"context"
	"time"
)

// Posting is one job posting as recorded by the store. Field values are
// frozen at first sight; only LastSeen moves on later observations, so a
// posting's displayed title cannot flicker if the source rephrases it.
type Posting struct {
	Identity  string     // stable dedup key, unique within the store
	Title     string     // job title
	Location  string     // location string as published
	URL       string     // direct listing link, may be empty
	PostedAt  *time.Time // nullable (best-effort parsed from the page)
	FirstSeen time.Time  // our clock, set on first ingestion
	LastSeen  time.Time  // our clock, advanced on every reappearance
}

// RawPosting is what the extractor pulls out of one listing element,
// before identity resolution. Any field may be empty.
type RawPosting struct {
	Title      string
	Location   string
	URL        string
	PostedRaw  string // unparsed posted-date text
	ExternalID string // explicit job id when the page exposes one
}

// PageFetcher retrieves the raw careers-listing payload.
type PageFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Extractor parses a raw listing payload into structured records.
// It never fails on malformed input; it returns an empty slice instead.
type Extractor interface {
	Extract(payload []byte) []RawPosting
}

// PostingFilter decides whether an extracted record is worth ingesting.
type PostingFilter interface {
	Match(rec RawPosting) bool
}

// PostingStore is the durable upsert-and-diff table of known postings.
// Upsert returns the stored record: on creation that is the input stamped
// with first/last-seen, on reappearance the original first-seen values.
type PostingStore interface {
	Upsert(p Posting) (created bool, stored Posting, err error)
	ListAll() ([]Posting, error)
	CountPostings() (int, error)
}

// RunLedger is the append-only audit trail of ingestion runs.
type RunLedger interface {
	AppendRun(run RunRecord) error
	ListRecentRuns(limit int) ([]RunRecord, error)
}

// Notifier delivers the new-postings delta to a human.
type Notifier interface {
	Notify(postings []Posting) error
}
