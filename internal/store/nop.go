package store

import "github.com/amoghj8/gradwatch/internal/model"

// NopStore is a do-nothing store for dry runs: every upsert reports "new" and
// nothing is persisted, so a dry-run cycle shows the full current listing.
type NopStore struct{}

// Ensure NopStore satisfies both store contracts.
var (
	_ model.PostingStore = (*NopStore)(nil)
	_ model.RunLedger    = (*NopStore)(nil)
)

func NewNopStore() *NopStore { return &NopStore{} }

func (n *NopStore) Upsert(p model.Posting) (bool, model.Posting, error) { return true, p, nil }
func (n *NopStore) ListAll() ([]model.Posting, error)     { return nil, nil }
func (n *NopStore) CountPostings() (int, error)           { return 0, nil }
func (n *NopStore) AppendRun(model.RunRecord) error       { return nil }
func (n *NopStore) ListRecentRuns(int) ([]model.RunRecord, error) { return nil, nil }
