package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amoghj8/gradwatch/internal/extract"
	"github.com/amoghj8/gradwatch/internal/identity"
	"github.com/amoghj8/gradwatch/internal/model"
)

// Result is the outcome of one ingestion cycle: the delta of newly-appeared
// postings plus the ledger record describing the run. The caller decides what
// to do with the delta (notify, print); the ingestor never contacts a
// notifier itself.
type Result struct {
	NewPostings []model.Posting
	Run         model.RunRecord
}

// Ingestor owns the full ingestion pipeline for one careers listing:
// fetch → extract → filter → resolve identity → upsert → delta + ledger.
type Ingestor struct {
	fetcher   model.PageFetcher
	extractor model.Extractor
	filter    model.PostingFilter
	store     model.PostingStore
	ledger    model.RunLedger
	logger    *slog.Logger
}

// New creates an ingestor wired with all its dependencies.
func New(
	fetcher model.PageFetcher,
	extractor model.Extractor,
	filter model.PostingFilter,
	store model.PostingStore,
	ledger model.RunLedger,
	logger *slog.Logger,
) *Ingestor {
	return &Ingestor{
		fetcher:   fetcher,
		extractor: extractor,
		filter:    filter,
		store:     store,
		ledger:    ledger,
		logger:    logger,
	}
}

// Run executes one ingestion cycle.
//
// Fetch and parse failures are terminal for the cycle but not errors: they
// come back as a zero-delta Result whose run record carries the non-success
// status, and the next scheduled cycle simply tries again. The returned error
// is reserved for storage failures — those mean the dedup guarantee is at
// risk and must reach the operator instead of being swallowed.
func (in *Ingestor) Run(ctx context.Context) (Result, error) {
	ranAt := time.Now().UTC()

	payload, err := in.fetcher.Fetch(ctx)
	if err != nil {
		in.logger.Warn("fetch failed", "error", err)
		return in.finish(model.RunRecord{
			RanAt:       ranAt,
			Status:      model.StatusFetchFailed,
			ErrorDetail: err.Error(),
		}, nil)
	}

	raw := in.extractor.Extract(payload)
	if len(raw) == 0 && len(bytes.TrimSpace(payload)) > 0 {
		// The page had content but yielded nothing: the remote structure
		// changed and the extractor needs updating.
		in.logger.Error("listing page yielded no records", "payload_bytes", len(payload))
		return in.finish(model.RunRecord{
			RanAt:       ranAt,
			Status:      model.StatusParseFailed,
			ErrorDetail: fmt.Sprintf("non-empty payload (%d bytes) produced zero records", len(payload)),
		}, nil)
	}

	var matched []model.RawPosting
	for _, rec := range raw {
		if in.filter.Match(rec) {
			matched = append(matched, rec)
		}
	}

	var delta []model.Posting
	skipped := 0
	for _, rec := range matched {
		id, err := identity.Resolve(rec)
		if err != nil {
			var idErr *model.IdentityError
			if errors.As(err, &idErr) {
				in.logger.Warn("skipping record without identity", "title", rec.Title, "location", rec.Location)
				skipped++
				continue
			}
			skipped++
			continue
		}

		created, stored, err := in.store.Upsert(model.Posting{
			Identity: id,
			Title:    rec.Title,
			Location: rec.Location,
			URL:      rec.URL,
			PostedAt: extract.ParsePostedDate(rec.PostedRaw),
		})
		if err != nil {
			// Durable-write failure aborts the cycle. The ledger append is
			// best-effort only: the same storage is likely broken.
			run := model.RunRecord{
				RanAt:        ranAt,
				FetchedCount: len(raw),
				NewCount:     len(delta),
				Status:       model.StatusPartial,
				ErrorDetail:  "storage: " + err.Error(),
			}
			_ = in.ledger.AppendRun(run)
			return Result{NewPostings: delta, Run: run}, fmt.Errorf("upserting posting: %w", err)
		}
		if created {
			delta = append(delta, stored)
		}
	}

	run := model.RunRecord{
		RanAt:        ranAt,
		FetchedCount: len(raw),
		NewCount:     len(delta),
		Status:       model.StatusSuccess,
	}
	if skipped > 0 {
		run.Status = model.StatusPartial
		run.ErrorDetail = fmt.Sprintf("%d record(s) skipped: no identity fields", skipped)
	}

	in.logger.Info("ingestion cycle complete",
		"fetched", len(raw),
		"matched", len(matched),
		"new", len(delta),
		"skipped", skipped,
		"status", run.Status,
	)

	return in.finish(run, delta)
}

// finish appends the run record to the ledger and assembles the Result.
// Ledger write failure is a storage error and propagates.
func (in *Ingestor) finish(run model.RunRecord, delta []model.Posting) (Result, error) {
	if err := in.ledger.AppendRun(run); err != nil {
		return Result{NewPostings: delta, Run: run}, fmt.Errorf("recording run: %w", err)
	}
	return Result{NewPostings: delta, Run: run}, nil
}
