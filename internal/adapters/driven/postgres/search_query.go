package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/bonlog/bonlog-core/internal/core/domain"
	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
)

// setThresholdSQL scopes the pg_trgm threshold used by the % operator to the
// current transaction
const setThresholdSQL = `SELECT set_config('pg_trgm.similarity_threshold', $1, true)`

// searchStatement is a rendered search query with its bound arguments.
// The term is embedded as an escaped literal; everything else is bound.
type searchStatement struct {
	query string
	args  []any
}

// statementBuilder accumulates WHERE conditions and positional arguments
type statementBuilder struct {
	conditions []string
	args       []any
}

// bind appends an argument and returns its placeholder
func (b *statementBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *statementBuilder) where(cond string) {
	b.conditions = append(b.conditions, cond)
}

func (b *statementBuilder) render(selectFrom, orderBy string, limit int) searchStatement {
	var sb strings.Builder
	sb.WriteString(selectFrom)
	if len(b.conditions) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(b.conditions, "\n  AND "))
	}
	sb.WriteString("\nORDER BY ")
	sb.WriteString(orderBy)
	sb.WriteString("\nLIMIT ")
	sb.WriteString(b.bind(limit))
	return searchStatement{query: sb.String(), args: b.args}
}

// escapeLike escapes the LIKE wildcards so the term matches literally
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// termLiteral renders the term as a SQL string literal
func termLiteral(term string) string {
	return pq.QuoteLiteral(term)
}

// containsLiteral renders a %term% LIKE pattern as a SQL string literal
func containsLiteral(term string) string {
	return pq.QuoteLiteral("%" + escapeLike(term) + "%")
}

// matchPredicate is the strategy condition for one text column
func matchPredicate(mode domain.SearchMode, column, term string) string {
	switch mode {
	case domain.SearchModeNgram:
		return column + " LIKE likequery(" + termLiteral(term) + ")"
	case domain.SearchModeTrigram:
		return "(" + column + " % " + termLiteral(term) + " OR " + column + " ILIKE " + containsLiteral(term) + ")"
	default:
		return column + " ILIKE " + containsLiteral(term)
	}
}

func similarity(column, term string) string {
	return "similarity(" + column + ", " + termLiteral(term) + ")"
}

// buildPostSearch renders the post search for the query's mode
func buildPostSearch(q driven.SearchQuery, opts domain.PostSearchOptions) searchStatement {
	b := &statementBuilder{}

	b.where("NOT p.is_hidden")
	b.where(matchPredicate(q.Mode, "p.content", q.Term))

	if len(opts.ExcludedIDs) > 0 {
		b.where("p.user_id <> ALL(" + b.bind(pq.Array(opts.ExcludedIDs)) + ")")
	}
	if len(opts.FilterIDs) > 0 {
		b.where("EXISTS (SELECT 1 FROM post_genres pg WHERE pg.post_id = p.id AND pg.genre_id = ANY(" +
			b.bind(pq.Array(opts.FilterIDs)) + "))")
	}

	orderBy := "p.created_at DESC, p.id DESC"
	if q.Mode.RanksBySimilarity() {
		score := similarity("p.content", q.Term)
		orderBy = score + " DESC, " + orderBy
		if opts.Cursor != "" {
			b.where("(" + score + ", p.created_at, p.id) < (SELECT " + similarity("c.content", q.Term) +
				", c.created_at, c.id FROM posts c WHERE c.id = " + b.bind(opts.Cursor) + ")")
		}
	} else if opts.Cursor != "" {
		b.where("p.id < " + b.bind(opts.Cursor))
	}

	return b.render("SELECT p.id\nFROM posts p", orderBy, opts.Limit)
}

// buildUserSearch renders the user search for the query's mode
func buildUserSearch(q driven.SearchQuery, opts domain.UserSearchOptions) searchStatement {
	b := &statementBuilder{}

	b.where("(" + matchPredicate(q.Mode, "u.nickname", q.Term) + " OR " + matchPredicate(q.Mode, "u.bio", q.Term) + ")")

	excluded := opts.ExcludedIDs
	if opts.CurrentUserID != "" {
		excluded = append(append([]string{}, excluded...), opts.CurrentUserID)
	}
	if len(excluded) > 0 {
		b.where("u.id <> ALL(" + b.bind(pq.Array(excluded)) + ")")
	}

	orderBy := "u.created_at DESC, u.id DESC"
	if q.Mode.RanksBySimilarity() {
		score := userScore("u", q.Term)
		orderBy = score + " DESC, " + orderBy
		if opts.Cursor != "" {
			b.where("(" + score + ", u.created_at, u.id) < (SELECT " + userScore("c", q.Term) +
				", c.created_at, c.id FROM users c WHERE c.id = " + b.bind(opts.Cursor) + ")")
		}
	} else if opts.Cursor != "" {
		b.where("u.id < " + b.bind(opts.Cursor))
	}

	return b.render("SELECT u.id\nFROM users u", orderBy, opts.Limit)
}

// userScore is the better of the nickname and bio similarity; a NULL bio scores 0
func userScore(alias, term string) string {
	return "GREATEST(" + similarity(alias+".nickname", term) + ", COALESCE(" + similarity(alias+".bio", term) + ", 0))"
}
