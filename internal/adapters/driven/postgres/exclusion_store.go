package postgres

import (
	"context"
	"fmt"

	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExclusionStore = (*ExclusionStore)(nil)

// excludedUsersSQL covers both block directions and the viewer's mutes
const excludedUsersSQL = `
SELECT blocked_id FROM user_blocks WHERE blocker_id = $1
UNION
SELECT blocker_id FROM user_blocks WHERE blocked_id = $1
UNION
SELECT muted_id FROM user_mutes WHERE muter_id = $1
ORDER BY 1`

// ExclusionStore implements driven.ExclusionStore
type ExclusionStore struct {
	db *DB
}

// NewExclusionStore creates a new ExclusionStore
func NewExclusionStore(db *DB) *ExclusionStore {
	return &ExclusionStore{db: db}
}

// ExcludedUserIDs returns the users hidden from viewerID
func (s *ExclusionStore) ExcludedUserIDs(ctx context.Context, viewerID string) ([]string, error) {
	ids, err := queryIDs(ctx, s.db, excludedUsersSQL, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query exclusions: %w", err)
	}
	return ids, nil
}
