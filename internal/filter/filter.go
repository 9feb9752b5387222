package filter

import (
	"strings"

	"github.com/amoghj8/gradwatch/internal/model"
)

// Ensure KeywordFilter implements model.PostingFilter.
var _ model.PostingFilter = (*KeywordFilter)(nil)

// KeywordFilter matches records whose title contains any of the title
// keywords and whose location contains any of the location keywords.
// Matching is case-insensitive. Empty keyword lists are treated as "match all".
type KeywordFilter struct {
	titleKeywords []string
	locations     []string
}

// NewKeywordFilter returns a filter that requires both a title keyword match
// and a location keyword match (case-insensitive substring).
func NewKeywordFilter(titleKeywords []string, locations []string) *KeywordFilter {
	return &KeywordFilter{
		titleKeywords: titleKeywords,
		locations:     locations,
	}
}

// Match returns true if the record's title contains any title keyword and its
// location contains any location keyword. Empty keyword lists pass all.
// Records without a location pass the location check: the extractor cannot
// always recover one, and dropping them would hide real postings.
func (f *KeywordFilter) Match(rec model.RawPosting) bool {
	titleLower := strings.ToLower(rec.Title)
	locationLower := strings.ToLower(rec.Location)

	if len(f.titleKeywords) > 0 {
		matched := false
		for _, kw := range f.titleKeywords {
			if strings.Contains(titleLower, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.locations) > 0 && rec.Location != "" {
		matched := false
		for _, loc := range f.locations {
			if strings.Contains(locationLower, strings.ToLower(loc)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}
