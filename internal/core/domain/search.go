package domain

import "strings"

// SearchMode determines which full-text strategy runs against PostgreSQL
type SearchMode string

const (
	SearchModeNgram   SearchMode = "bigm"    // pg_bigm n-gram index
	SearchModeTrigram SearchMode = "trgm"    // pg_trgm similarity
	SearchModePattern SearchMode = "pattern" // plain ILIKE, no extension (default)
)

// Extension names for the search strategies
const (
	ExtensionBigm = "pg_bigm"
	ExtensionTrgm = "pg_trgm"
)

// Search defaults
const (
	DefaultSearchLimit         = 20
	MaxSearchLimit             = 100
	DefaultSimilarityThreshold = 0.3
)

// ParseSearchMode maps a configuration value to a SearchMode.
// Matching is case-insensitive. Anything other than "bigm" or "trgm",
// including the empty string, resolves to SearchModePattern.
func ParseSearchMode(raw string) SearchMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SearchModeNgram):
		return SearchModeNgram
	case string(SearchModeTrigram):
		return SearchModeTrigram
	default:
		return SearchModePattern
	}
}

// Extension returns the PostgreSQL extension the mode depends on, or "" for pattern-match.
func (m SearchMode) Extension() string {
	switch m {
	case SearchModeNgram:
		return ExtensionBigm
	case SearchModeTrigram:
		return ExtensionTrgm
	default:
		return ""
	}
}

// IsFallback reports whether the mode is the extension-free fallback strategy.
func (m SearchMode) IsFallback() bool {
	return m == SearchModePattern
}

// RanksBySimilarity reports whether results are ordered by a similarity score
// rather than by creation time.
func (m SearchMode) RanksBySimilarity() bool {
	return m == SearchModeTrigram
}

// IsSearchExtension reports whether name is one of the extensions a search mode can use.
func IsSearchExtension(name string) bool {
	return name == ExtensionBigm || name == ExtensionTrgm
}

// PostSearchOptions configures a post search
type PostSearchOptions struct {
	ExcludedIDs []string `json:"excluded_ids,omitempty"` // author IDs to suppress
	FilterIDs   []string `json:"genre_ids,omitempty"`    // restrict to posts in any of these genres
	Cursor      string   `json:"cursor,omitempty"`       // exclusive keyset bound (post ID)
	Limit       int      `json:"limit"`
}

// UserSearchOptions configures a user search
type UserSearchOptions struct {
	ExcludedIDs   []string `json:"excluded_ids,omitempty"`
	CurrentUserID string   `json:"-"`
	Cursor        string   `json:"cursor,omitempty"`
	Limit         int      `json:"limit"`
}

// NormalizeLimit applies the default page size and caps it at max.
func NormalizeLimit(limit, max int) int {
	if max <= 0 {
		max = MaxSearchLimit
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > max {
		limit = max
	}
	return limit
}

// SearchPage is one page of search hits as returned to API clients
type SearchPage struct {
	IDs        []string `json:"ids"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// NewSearchPage builds a page from a result and the limit it was requested with.
// A full page signals that the caller should continue from the last ID.
func NewSearchPage(ids []string, limit int) *SearchPage {
	if ids == nil {
		ids = []string{}
	}
	page := &SearchPage{IDs: ids}
	if limit > 0 && len(ids) == limit {
		page.HasMore = true
		page.NextCursor = ids[len(ids)-1]
	}
	return page
}

// SearchStatus is a live snapshot of the search configuration and installed extensions
type SearchStatus struct {
	Mode             SearchMode `json:"mode"`
	NgramAvailable   bool       `json:"bigm_available"`
	TrigramAvailable bool       `json:"trgm_available"`
}

// ProvisionResult reports the outcome of index provisioning
type ProvisionResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	InProgress bool   `json:"in_progress,omitempty"` // another holder has the provisioning lock
}
