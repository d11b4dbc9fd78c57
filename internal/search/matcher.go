// Package search implements catalog query matching, filter predicates and
// the bounded recent-search history backing suggestions.
package search

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/validation"
)

// maxHistory bounds the recent-search list.
const maxHistory = 10

// priceProximity is the window used when a query parses as a price.
var priceProximity = decimal.RequireFromString("10.00")

// defaultPopular is the static suggestion list shown alongside history.
var defaultPopular = []string{
	"shoes",
	"t-shirt",
	"blazer",
	"men",
	"women",
	"casual",
	"formal",
	"winter",
}

// Filters narrows match results before the query is applied. Nil bounds are
// unbounded; an empty category set admits every category.
type Filters struct {
	MaxPrice    *float64
	MinRating   *float64
	CategoryIDs []string
}

// Normalize prepares a raw query for matching: trim, lowercase.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether the product passes the filters and, when the
// normalized query is non-empty, matches it. A query matches on a
// case-insensitive substring of title or description, or, when it parses as
// a valid price, on any product priced within 10.00 of that value.
func Matches(p domain.Product, normalizedQuery string, f Filters) bool {
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if len(f.CategoryIDs) > 0 && !containsFold(f.CategoryIDs, p.CategoryID) {
		return false
	}

	if normalizedQuery == "" {
		return true
	}

	if strings.Contains(strings.ToLower(p.Title), normalizedQuery) ||
		strings.Contains(strings.ToLower(p.Description), normalizedQuery) {
		return true
	}

	if target, ok := parsePrice(normalizedQuery); ok {
		diff := decimal.NewFromFloat(p.Price).Sub(target).Abs()
		return diff.LessThanOrEqual(priceProximity)
	}
	return false
}

// Filter applies Matches across a product list, preserving input order.
func Filter(products []domain.Product, query string, f Filters) []domain.Product {
	normalized := Normalize(query)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, normalized, f) {
			out = append(out, p)
		}
	}
	return out
}

func parsePrice(query string) (decimal.Decimal, bool) {
	if res := validation.Price(query); !res.OK {
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(query)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

// Matcher owns the recent-query history and popular suggestion list.
// Not safe for concurrent use; callers serialise AddToHistory.
type Matcher struct {
	recent  []string
	popular []string
}

// NewMatcher constructs a Matcher seeded with the given history and the
// default popular suggestions.
func NewMatcher(recent []string) *Matcher {
	m := &Matcher{popular: defaultPopular}
	for i := len(recent) - 1; i >= 0; i-- {
		// Replay oldest-first so the stored order survives re-adding.
		m.insert(recent[i])
	}
	return m
}

// AddToHistory sanitises and validates the query, then records it at the
// front of the history, dropping any case-insensitive duplicate and
// truncating to the cap. Invalid queries are rejected and reported false.
func (m *Matcher) AddToHistory(query string) bool {
	sanitized := validation.Sanitize(query)
	if res := validation.SearchQuery(sanitized); !res.OK {
		return false
	}
	m.insert(sanitized)
	return true
}

func (m *Matcher) insert(query string) {
	kept := make([]string, 0, len(m.recent)+1)
	kept = append(kept, query)
	for _, existing := range m.recent {
		if strings.EqualFold(existing, query) {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) > maxHistory {
		kept = kept[:maxHistory]
	}
	m.recent = kept
}

// Recent returns the history most-recent first.
func (m *Matcher) Recent() []string {
	return append([]string(nil), m.recent...)
}

// Suggestions returns completion candidates for the prefix. An empty prefix
// yields recent then popular queries; otherwise substring matches from
// recent then popular. First occurrence wins on duplicates.
func (m *Matcher) Suggestions(prefix string) []string {
	normalized := Normalize(prefix)

	var out []string
	seen := map[string]struct{}{}
	add := func(candidate string) {
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
	}

	for _, recent := range m.recent {
		if normalized == "" || strings.Contains(strings.ToLower(recent), normalized) {
			add(recent)
		}
	}
	for _, popular := range m.popular {
		if normalized == "" || strings.Contains(strings.ToLower(popular), normalized) {
			add(popular)
		}
	}
	return out
}
