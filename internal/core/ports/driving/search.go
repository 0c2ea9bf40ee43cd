package driving

import (
	"context"

	"github.com/bonlog/bonlog-core/internal/core/domain"
)

// SearchService runs full-text searches over posts and users.
// Results are ordered IDs only; callers hydrate entities themselves.
type SearchService interface {
	// Mode returns the search mode configured at startup
	Mode() domain.SearchMode

	// SearchPosts returns post IDs matching query.
	// A blank query returns an empty result without touching the database.
	SearchPosts(ctx context.Context, query string, opts domain.PostSearchOptions) ([]string, error)

	// SearchUsers returns user IDs matching query, never including opts.CurrentUserID.
	SearchUsers(ctx context.Context, query string, opts domain.UserSearchOptions) ([]string, error)

	// PageSize returns the limit a search with the requested limit runs with
	PageSize(limit int) int

	// ExclusionsFor returns the user IDs hidden from viewerID (blocks and mutes)
	ExclusionsFor(ctx context.Context, viewerID string) ([]string, error)
}

// SearchAdminService is the operational surface of the search subsystem.
// None of its methods return errors: failures become negative results.
type SearchAdminService interface {
	// Mode returns the search mode configured at startup
	Mode() domain.SearchMode

	// IsExtensionAvailable reports whether the extension is installed; false on any error
	IsExtensionAvailable(ctx context.Context, name string) bool

	// EnableExtension installs the extension if missing; false on failure
	EnableExtension(ctx context.Context, name string) bool

	// CreateSearchIndexes creates the indexes the configured mode needs
	CreateSearchIndexes(ctx context.Context) domain.ProvisionResult

	// Status returns the configured mode and live extension availability
	Status(ctx context.Context) domain.SearchStatus
}
