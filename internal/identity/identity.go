package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/amoghj8/gradwatch/internal/model"
)

// jobURLRegex captures the id-looking path segment after /job/ or /jobs/
// in a posting URL, e.g. /en/jobs/JR123456/senior-engineer/ -> JR123456.
var jobURLRegex = regexp.MustCompile(`(?i)/jobs?/([A-Za-z0-9_-]+)`)

// Resolve maps an extracted record to a stable dedup key.
//
// Preference order: an explicit external id, then an id segment parsed from
// the posting URL, then the URL itself, then a normalized title+location
// composite. The composite is a best-effort fallback: two distinct postings
// with identical title and location and no URL collapse into one identity.
// That collision is accepted rather than papered over, since the source does
// not always expose anything more stable.
//
// Fails with *model.IdentityError only when every field is empty.
func Resolve(rec model.RawPosting) (string, error) {
	if id := strings.TrimSpace(rec.ExternalID); id != "" {
		return "id:" + id, nil
	}

	if u := strings.TrimSpace(rec.URL); u != "" {
		if m := jobURLRegex.FindStringSubmatch(u); m != nil {
			return "url:" + strings.ToLower(m[1]), nil
		}
		// URL with no recognizable id segment: fingerprint the whole thing.
		return "url:" + fingerprint(canonicalURL(u)), nil
	}

	composite := normalize(rec.Title) + "|" + normalize(rec.Location)
	if composite != "|" {
		return "tl:" + fingerprint(composite), nil
	}

	return "", &model.IdentityError{Title: rec.Title, Location: rec.Location}
}

// canonicalURL lowercases and strips fragment and trailing slashes so that
// cosmetic URL variants map to the same key.
func canonicalURL(u string) string {
	u = strings.ToLower(u)
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}

// normalize lowercases, strips punctuation, and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// fingerprint returns a short stable hex digest.
func fingerprint(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:16]
}
