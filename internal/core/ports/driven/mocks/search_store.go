package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bonlog/bonlog-core/internal/core/domain"
	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
)

// MockPost is a post row as seen by the search store
type MockPost struct {
	ID        string
	Content   string
	UserID    string
	Hidden    bool
	GenreIDs  []string
	CreatedAt time.Time
}

// MockUser is a user row as seen by the search store
type MockUser struct {
	ID        string
	Nickname  string
	Bio       *string
	CreatedAt time.Time
}

// MockSearchStore is an in-memory SearchStore that mirrors the matching and
// ordering rules of the PostgreSQL strategies. Errors can be injected per mode.
type MockSearchStore struct {
	mu    sync.RWMutex
	posts map[string]*MockPost
	users map[string]*MockUser

	// FailModes makes every query under the given mode return the error
	FailModes map[domain.SearchMode]error

	calls []driven.SearchQuery
}

// NewMockSearchStore creates a new MockSearchStore
func NewMockSearchStore() *MockSearchStore {
	return &MockSearchStore{
		posts:     make(map[string]*MockPost),
		users:     make(map[string]*MockUser),
		FailModes: make(map[domain.SearchMode]error),
	}
}

// AddPost stores a post
func (m *MockSearchStore) AddPost(p *MockPost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
}

// AddUser stores a user
func (m *MockSearchStore) AddUser(u *MockUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// PostCount returns the number of stored posts
func (m *MockSearchStore) PostCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.posts)
}

// FailMode injects err for every query run under mode
func (m *MockSearchStore) FailMode(mode domain.SearchMode, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailModes[mode] = err
}

// Calls returns the queries executed so far, in order
func (m *MockSearchStore) Calls() []driven.SearchQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]driven.SearchQuery, len(m.calls))
	copy(out, m.calls)
	return out
}

// ResetCalls clears the recorded calls
func (m *MockSearchStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

type rankedRow struct {
	id        string
	score     float64
	createdAt time.Time
}

// before reports whether a sorts before b under the mode's descending ordering
func before(mode domain.SearchMode, a, b rankedRow) bool {
	if mode.RanksBySimilarity() && a.score != b.score {
		return a.score > b.score
	}
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.id > b.id
}

func (m *MockSearchStore) SearchPosts(ctx context.Context, q driven.SearchQuery, opts domain.PostSearchOptions) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	failErr := m.FailModes[q.Mode]
	m.mu.Unlock()

	if failErr != nil {
		return nil, failErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	excluded := toSet(opts.ExcludedIDs)
	genres := toSet(opts.FilterIDs)

	score := func(p *MockPost) float64 { return Similarity(p.Content, q.Term) }

	var rows []rankedRow
	for _, p := range m.posts {
		if p.Hidden || excluded[p.UserID] {
			continue
		}
		if len(genres) > 0 && !anyIn(p.GenreIDs, genres) {
			continue
		}
		if !matches(q, p.Content) {
			continue
		}
		rows = append(rows, rankedRow{id: p.ID, score: score(p), createdAt: p.CreatedAt})
	}

	var cursor *rankedRow
	if opts.Cursor != "" {
		if p, ok := m.posts[opts.Cursor]; ok {
			cursor = &rankedRow{id: p.ID, score: score(p), createdAt: p.CreatedAt}
		} else if q.Mode.RanksBySimilarity() {
			return []string{}, nil
		}
	}

	return page(q.Mode, rows, opts.Cursor, cursor, opts.Limit), nil
}

func (m *MockSearchStore) SearchUsers(ctx context.Context, q driven.SearchQuery, opts domain.UserSearchOptions) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	failErr := m.FailModes[q.Mode]
	m.mu.Unlock()

	if failErr != nil {
		return nil, failErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	excluded := toSet(opts.ExcludedIDs)
	if opts.CurrentUserID != "" {
		excluded[opts.CurrentUserID] = true
	}

	score := func(u *MockUser) float64 {
		s := Similarity(u.Nickname, q.Term)
		if u.Bio != nil {
			if b := Similarity(*u.Bio, q.Term); b > s {
				s = b
			}
		}
		return s
	}

	var rows []rankedRow
	for _, u := range m.users {
		if excluded[u.ID] {
			continue
		}
		hit := matches(q, u.Nickname)
		if !hit && u.Bio != nil {
			hit = matches(q, *u.Bio)
		}
		if !hit {
			continue
		}
		rows = append(rows, rankedRow{id: u.ID, score: score(u), createdAt: u.CreatedAt})
	}

	var cursor *rankedRow
	if opts.Cursor != "" {
		if u, ok := m.users[opts.Cursor]; ok {
			cursor = &rankedRow{id: u.ID, score: score(u), createdAt: u.CreatedAt}
		} else if q.Mode.RanksBySimilarity() {
			return []string{}, nil
		}
	}

	return page(q.Mode, rows, opts.Cursor, cursor, opts.Limit), nil
}

// page sorts rows, applies the keyset bound and the limit.
// Time-ordered modes bound by ID; similarity mode bounds by the cursor row's ordering key.
func page(mode domain.SearchMode, rows []rankedRow, cursorID string, cursor *rankedRow, limit int) []string {
	sort.Slice(rows, func(i, j int) bool { return before(mode, rows[i], rows[j]) })

	ids := []string{}
	for _, r := range rows {
		if cursorID != "" {
			if mode.RanksBySimilarity() {
				if !before(mode, *cursor, r) {
					continue
				}
			} else if r.id >= cursorID {
				continue
			}
		}
		ids = append(ids, r.id)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids
}

// matches applies the strategy predicate to one text field
func matches(q driven.SearchQuery, text string) bool {
	switch q.Mode {
	case domain.SearchModeNgram:
		// LIKE is case-sensitive
		return strings.Contains(text, q.Term)
	case domain.SearchModeTrigram:
		threshold := q.Threshold
		if threshold <= 0 {
			threshold = domain.DefaultSimilarityThreshold
		}
		return Similarity(text, q.Term) >= threshold || containsFold(text, q.Term)
	default:
		return containsFold(text, q.Term)
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Similarity approximates pg_trgm's similarity(): the Jaccard index of the
// padded, lower-cased trigram sets of both strings.
func Similarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if tb[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

func trigrams(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = true
		}
	}
	return set
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func anyIn(ids []string, set map[string]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}
