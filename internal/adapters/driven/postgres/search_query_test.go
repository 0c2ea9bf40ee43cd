package postgres

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lib/pq"

	"github.com/bonlog/bonlog-core/internal/core/domain"
	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pine", "pine"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`C:\bonsai`, `C:\\bonsai`},
		{"黒松", "黒松"},
	}

	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchPredicate(t *testing.T) {
	tests := []struct {
		mode domain.SearchMode
		term string
		want string
	}{
		{domain.SearchModeNgram, "松", `p.content LIKE likequery('松')`},
		{domain.SearchModeTrigram, "松", `(p.content % '松' OR p.content ILIKE '%松%')`},
		{domain.SearchModePattern, "松", `p.content ILIKE '%松%'`},
		{domain.SearchModePattern, "it's", `p.content ILIKE '%it''s%'`},
		{domain.SearchModeNgram, "it's", `p.content LIKE likequery('it''s')`},
		{domain.SearchModePattern, "50%", `p.content ILIKE  E'%50\\%%'`},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.term, func(t *testing.T) {
			if got := matchPredicate(tt.mode, "p.content", tt.term); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestMatchPredicate_InjectionIsQuoted(t *testing.T) {
	term := "'; DROP TABLE posts; --"
	got := matchPredicate(domain.SearchModeNgram, "p.content", term)
	want := `p.content LIKE likequery('''; DROP TABLE posts; --')`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestBuildPostSearch_Minimal(t *testing.T) {
	stmt := buildPostSearch(
		driven.SearchQuery{Mode: domain.SearchModeNgram, Term: "pine"},
		domain.PostSearchOptions{Limit: 20},
	)

	want := "SELECT p.id\nFROM posts p\n" +
		"WHERE NOT p.is_hidden\n" +
		"  AND p.content LIKE likequery('pine')\n" +
		"ORDER BY p.created_at DESC, p.id DESC\n" +
		"LIMIT $1"
	if stmt.query != want {
		t.Errorf("query:\n%s\nwant:\n%s", stmt.query, want)
	}
	if !reflect.DeepEqual(stmt.args, []any{20}) {
		t.Errorf("args = %v", stmt.args)
	}
}

func TestBuildPostSearch_AllOptions(t *testing.T) {
	opts := domain.PostSearchOptions{
		ExcludedIDs: []string{"u2", "u3"},
		FilterIDs:   []string{"g1"},
		Cursor:      "p9",
		Limit:       10,
	}
	stmt := buildPostSearch(driven.SearchQuery{Mode: domain.SearchModePattern, Term: "moss"}, opts)

	for _, fragment := range []string{
		"NOT p.is_hidden",
		"p.content ILIKE '%moss%'",
		"p.user_id <> ALL($1)",
		"EXISTS (SELECT 1 FROM post_genres pg WHERE pg.post_id = p.id AND pg.genre_id = ANY($2))",
		"p.id < $3",
		"ORDER BY p.created_at DESC, p.id DESC",
		"LIMIT $4",
	} {
		if !strings.Contains(stmt.query, fragment) {
			t.Errorf("query missing %q:\n%s", fragment, stmt.query)
		}
	}

	wantArgs := []any{pq.Array([]string{"u2", "u3"}), pq.Array([]string{"g1"}), "p9", 10}
	if !reflect.DeepEqual(stmt.args, wantArgs) {
		t.Errorf("args = %#v, want %#v", stmt.args, wantArgs)
	}
}

func TestBuildPostSearch_TrigramOrdersBySimilarity(t *testing.T) {
	stmt := buildPostSearch(
		driven.SearchQuery{Mode: domain.SearchModeTrigram, Term: "pine"},
		domain.PostSearchOptions{Limit: 20},
	)

	want := "ORDER BY similarity(p.content, 'pine') DESC, p.created_at DESC, p.id DESC"
	if !strings.Contains(stmt.query, want) {
		t.Errorf("query missing %q:\n%s", want, stmt.query)
	}
	if strings.Contains(stmt.query, "p.id <") {
		t.Errorf("unexpected cursor condition:\n%s", stmt.query)
	}
}

func TestBuildPostSearch_TrigramCursorUsesRowKey(t *testing.T) {
	stmt := buildPostSearch(
		driven.SearchQuery{Mode: domain.SearchModeTrigram, Term: "pine"},
		domain.PostSearchOptions{Cursor: "p5", Limit: 20},
	)

	want := "(similarity(p.content, 'pine'), p.created_at, p.id) < " +
		"(SELECT similarity(c.content, 'pine'), c.created_at, c.id FROM posts c WHERE c.id = $1)"
	if !strings.Contains(stmt.query, want) {
		t.Errorf("query missing keyset condition:\n%s", stmt.query)
	}
	if !reflect.DeepEqual(stmt.args, []any{"p5", 20}) {
		t.Errorf("args = %v", stmt.args)
	}
}

func TestBuildUserSearch(t *testing.T) {
	excluded := make([]string, 1, 4)
	excluded[0] = "u2"
	opts := domain.UserSearchOptions{
		ExcludedIDs:   excluded,
		CurrentUserID: "u1",
		Limit:         5,
	}

	stmt := buildUserSearch(driven.SearchQuery{Mode: domain.SearchModePattern, Term: "bons"}, opts)

	for _, fragment := range []string{
		"FROM users u",
		"(u.nickname ILIKE '%bons%' OR u.bio ILIKE '%bons%')",
		"u.id <> ALL($1)",
		"ORDER BY u.created_at DESC, u.id DESC",
		"LIMIT $2",
	} {
		if !strings.Contains(stmt.query, fragment) {
			t.Errorf("query missing %q:\n%s", fragment, stmt.query)
		}
	}

	wantArgs := []any{pq.Array([]string{"u2", "u1"}), 5}
	if !reflect.DeepEqual(stmt.args, wantArgs) {
		t.Errorf("args = %#v, want %#v", stmt.args, wantArgs)
	}
	if len(opts.ExcludedIDs) != 1 || excluded[:2][1] != "" {
		t.Error("caller's excluded IDs were modified")
	}
}

func TestBuildUserSearch_NoExclusions(t *testing.T) {
	stmt := buildUserSearch(driven.SearchQuery{Mode: domain.SearchModeNgram, Term: "moss"}, domain.UserSearchOptions{Limit: 5})

	if strings.Contains(stmt.query, "<> ALL") {
		t.Errorf("unexpected exclusion clause:\n%s", stmt.query)
	}
	if !reflect.DeepEqual(stmt.args, []any{5}) {
		t.Errorf("args = %v", stmt.args)
	}
}

func TestBuildUserSearch_TrigramScore(t *testing.T) {
	stmt := buildUserSearch(
		driven.SearchQuery{Mode: domain.SearchModeTrigram, Term: "moss"},
		domain.UserSearchOptions{Cursor: "u7", Limit: 5},
	)

	score := "GREATEST(similarity(u.nickname, 'moss'), COALESCE(similarity(u.bio, 'moss'), 0))"
	if !strings.Contains(stmt.query, "ORDER BY "+score+" DESC, u.created_at DESC, u.id DESC") {
		t.Errorf("unexpected ordering:\n%s", stmt.query)
	}
	if !strings.Contains(stmt.query, "FROM users c WHERE c.id = $1") {
		t.Errorf("missing keyset subquery:\n%s", stmt.query)
	}
}

func TestIndexStatements(t *testing.T) {
	got := indexStatements(domain.SearchModeNgram)
	want := []string{
		`CREATE INDEX IF NOT EXISTS "idx_posts_content_bigm" ON "posts" USING gin ("content" gin_bigm_ops)`,
		`CREATE INDEX IF NOT EXISTS "idx_users_nickname_bigm" ON "users" USING gin ("nickname" gin_bigm_ops)`,
		`CREATE INDEX IF NOT EXISTS "idx_users_bio_bigm" ON "users" USING gin ("bio" gin_bigm_ops)`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v", got)
	}

	for _, stmt := range indexStatements(domain.SearchModeTrigram) {
		if !strings.Contains(stmt, "gin_trgm_ops") {
			t.Errorf("trigram statement without gin_trgm_ops: %s", stmt)
		}
	}

	if stmts := indexStatements(domain.SearchModePattern); len(stmts) != 0 {
		t.Errorf("pattern mode should create no indexes, got %v", stmts)
	}
}

func TestFormatThreshold(t *testing.T) {
	tests := map[float64]string{
		0.3:  "0.3",
		0.45: "0.45",
		0:    "0.3",
		2:    "0.3",
		1:    "1",
	}
	for in, want := range tests {
		if got := formatThreshold(in); got != want {
			t.Errorf("formatThreshold(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestWrapPQ(t *testing.T) {
	pqErr := &pq.Error{Code: "42883", Message: "function likequery(unknown) does not exist"}

	err := wrapPQ("search posts (bigm)", pqErr)
	if !strings.Contains(err.Error(), "sqlstate 42883") {
		t.Errorf("missing sqlstate: %v", err)
	}
	var target *pq.Error
	if !errors.As(err, &target) {
		t.Error("wrapped error lost its *pq.Error")
	}

	plain := wrapPQ("search posts (bigm)", errors.New("bad connection"))
	if strings.Contains(plain.Error(), "sqlstate") {
		t.Errorf("unexpected sqlstate on non-server error: %v", plain)
	}
}

func TestHashLockName(t *testing.T) {
	if hashLockName("search:provision") != hashLockName("search:provision") {
		t.Error("hash is not deterministic")
	}
	if hashLockName("search:provision") == hashLockName("search:other") {
		t.Error("distinct names hashed to the same key")
	}
}
