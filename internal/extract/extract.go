package extract

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amoghj8/gradwatch/internal/model"
)

// Ensure HTMLExtractor implements model.Extractor.
var _ model.Extractor = (*HTMLExtractor)(nil)

// HTMLExtractor pulls posting records out of a careers-listing HTML page.
//
// Career sites restructure their markup without notice, so extraction is
// layered: structured job cards first, then any anchors pointing at job
// detail pages, then a last-resort scan of the page text for title-looking
// lines. Malformed input yields an empty slice, never an error — the
// orchestrator tells a changed page apart from an empty one by count alone.
type HTMLExtractor struct {
	baseURL *url.URL // for resolving relative hrefs; may be nil
}

// NewHTMLExtractor creates an extractor that resolves relative links against
// baseURL.
func NewHTMLExtractor(baseURL string) *HTMLExtractor {
	u, err := url.Parse(baseURL)
	if err != nil {
		u = nil
	}
	return &HTMLExtractor{baseURL: u}
}

// titleKeywords mark a text fragment as a plausible job title. Mirrors the
// terms the watched listings actually use for early-career engineering roles.
var titleKeywords = []string{
	"engineer", "developer", "software", "new grad", "graduate", "entry level", "intern",
}

func looksLikeTitle(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range titleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Extract parses the payload and returns every posting record it can find.
// Records are deduplicated within the page (listings repeat anchors).
func (e *HTMLExtractor) Extract(payload []byte) []model.RawPosting {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil
	}

	recs := e.fromJobCards(doc)
	if len(recs) == 0 {
		recs = e.fromJobLinks(doc)
	}
	if len(recs) == 0 {
		recs = fromTextScan(doc)
	}
	return recs
}

// fromJobCards walks elements that look like structured job tiles.
func (e *HTMLExtractor) fromJobCards(doc *goquery.Document) []model.RawPosting {
	var recs []model.RawPosting
	seen := map[string]bool{}

	doc.Find(`article[class*="job"], div[class*="job-"], li[class*="job"]`).Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("h1, h2, h3, h4, h5").First().Text())
		if title == "" {
			title = strings.TrimSpace(card.Find("a").First().Text())
		}
		if title == "" || !looksLikeTitle(title) {
			return
		}

		rec := model.RawPosting{
			Title:    collapse(title),
			Location: collapse(card.Find(`[class*="location"]`).First().Text()),
		}

		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			rec.URL = e.resolveURL(href)
		}
		if id, ok := card.Attr("data-id"); ok {
			rec.ExternalID = strings.TrimSpace(id)
		} else if id, ok := card.Attr("data-job-id"); ok {
			rec.ExternalID = strings.TrimSpace(id)
		}
		if dt, ok := card.Find("time[datetime]").First().Attr("datetime"); ok {
			rec.PostedRaw = strings.TrimSpace(dt)
		} else {
			rec.PostedRaw = collapse(card.Find(`[class*="date"], [class*="posted"]`).First().Text())
		}

		key := rec.URL + "|" + rec.Title + "|" + rec.Location
		if seen[key] {
			return
		}
		seen[key] = true
		recs = append(recs, rec)
	})

	return recs
}

// fromJobLinks falls back to scanning every anchor that points at a job
// detail page.
func (e *HTMLExtractor) fromJobLinks(doc *goquery.Document) []model.RawPosting {
	var recs []model.RawPosting
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := e.resolveURL(href)
		low := strings.ToLower(abs)
		if !strings.Contains(low, "/job/") && !strings.Contains(low, "/jobs/") {
			return
		}

		title := collapse(a.Text())
		if title == "" || !looksLikeTitle(title) {
			return
		}

		rec := model.RawPosting{
			Title: title,
			URL:   abs,
		}
		// A location often sits in a sibling node inside the same list item.
		if parent := a.Closest("li, article, div"); parent.Length() > 0 {
			rec.Location = collapse(parent.Find(`[class*="location"]`).First().Text())
		}

		if seen[abs] {
			return
		}
		seen[abs] = true
		recs = append(recs, rec)
	})

	return recs
}

// fromTextScan is the last resort: walk the visible text line by line and
// keep short lines that read like job titles. These records carry no URL or
// location, so their identity degrades to the title composite.
func fromTextScan(doc *goquery.Document) []model.RawPosting {
	var recs []model.RawPosting
	seen := map[string]bool{}

	for _, line := range strings.Split(doc.Text(), "\n") {
		line = collapse(line)
		if line == "" || len(line) >= 100 {
			continue
		}
		if !looksLikeTitle(line) {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		recs = append(recs, model.RawPosting{Title: line})
	}

	return recs
}

func (e *HTMLExtractor) resolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if e.baseURL == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.baseURL.ResolveReference(ref).String()
}

// collapse trims and collapses internal whitespace.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// postedDateLayouts are tried in order when parsing a raw posted-date string.
var postedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
}

// ParsePostedDate best-effort parses a raw posted-date string.
// Returns nil when nothing matches; the date is advisory, never identity.
func ParsePostedDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range postedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
