package driven

import (
	"context"

	"github.com/bonlog/bonlog-core/internal/core/domain"
)

// SearchQuery is a normalized search request handed to a SearchStore.
// Term is already trimmed and non-blank.
type SearchQuery struct {
	Mode      domain.SearchMode
	Term      string
	Threshold float64 // similarity threshold, only used by SearchModeTrigram
}

// SearchStore executes strategy-specific full-text queries (PostgreSQL).
// Implementations return a fully materialized, totally ordered list of IDs
// and never partial results on error.
type SearchStore interface {
	// SearchPosts returns matching visible post IDs
	SearchPosts(ctx context.Context, q SearchQuery, opts domain.PostSearchOptions) ([]string, error)

	// SearchUsers returns matching user IDs
	SearchUsers(ctx context.Context, q SearchQuery, opts domain.UserSearchOptions) ([]string, error)
}

// ExtensionStore inspects and provisions database search capabilities
type ExtensionStore interface {
	// ExtensionInstalled reports whether the named extension is installed
	ExtensionInstalled(ctx context.Context, name string) (bool, error)

	// CreateExtension installs the named extension if it is not installed yet
	CreateExtension(ctx context.Context, name string) error

	// CreateSearchIndexes creates the indexes the given mode needs.
	// Must be idempotent.
	CreateSearchIndexes(ctx context.Context, mode domain.SearchMode) error
}

// ExclusionStore resolves the users a viewer must not see in search results
type ExclusionStore interface {
	// ExcludedUserIDs returns users the viewer blocked or muted, and users who blocked the viewer
	ExcludedUserIDs(ctx context.Context, viewerID string) ([]string, error)
}
