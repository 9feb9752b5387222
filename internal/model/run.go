package model

import "time"

// Run statuses. A run record is written for every cycle, whatever the outcome.
const (
	StatusSuccess     = "success"
	StatusFetchFailed = "fetch_failed"
	StatusParseFailed = "parse_failed"
	StatusPartial     = "partial" // some records skipped for lacking identity fields
)

// RunRecord is one ingestion attempt. Append-only; never mutated.
type RunRecord struct {
	ID           string    // ULID, assigned by the ledger if empty
	RanAt        time.Time
	FetchedCount int // records the extractor produced, pre-filter
	NewCount     int // records whose upsert created a new row
	Status       string
	ErrorDetail  string // non-empty for non-success statuses
}
