package filter

import (
	"testing"

	"github.com/amoghj8/gradwatch/internal/model"
)

func TestMatchTitleKeyword(t *testing.T) {
	f := NewKeywordFilter([]string{"software engineer", "new grad"}, nil)

	cases := []struct {
		title string
		want  bool
	}{
		{"Software Engineer, Backend", true},
		{"SOFTWARE ENGINEER", true},
		{"New Grad Program 2027", true},
		{"Senior Accountant", false},
		{"", false},
	}
	for _, c := range cases {
		got := f.Match(model.RawPosting{Title: c.title})
		if got != c.want {
			t.Errorf("Match(%q) = %v, want %v", c.title, got, c.want)
		}
	}
}

func TestMatchLocationKeyword(t *testing.T) {
	f := NewKeywordFilter([]string{"engineer"}, []string{"san francisco", "remote"})

	cases := []struct {
		location string
		want     bool
	}{
		{"San Francisco, CA", true},
		{"Remote - US", true},
		{"London, UK", false},
	}
	for _, c := range cases {
		got := f.Match(model.RawPosting{Title: "Software Engineer", Location: c.location})
		if got != c.want {
			t.Errorf("Match(location=%q) = %v, want %v", c.location, got, c.want)
		}
	}
}

func TestMatchEmptyLocationPasses(t *testing.T) {
	f := NewKeywordFilter([]string{"engineer"}, []string{"san francisco"})

	// The extractor cannot always recover a location. Those records still
	// pass the location check.
	if !f.Match(model.RawPosting{Title: "Software Engineer"}) {
		t.Error("record without location should pass the location check")
	}
}

func TestMatchEmptyKeywordListsPassAll(t *testing.T) {
	f := NewKeywordFilter(nil, nil)

	if !f.Match(model.RawPosting{Title: "Senior Accountant", Location: "London, UK"}) {
		t.Error("empty keyword lists should match everything")
	}
}
