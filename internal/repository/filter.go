package repository

import (
	"fmt"
	"strings"

	"wine-cellar/internal/domain"
)

// whereBuilder accumulates positional predicates for a wines query aliased as w.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) add(clause string, arg any) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, fmt.Sprintf(clause, len(b.args)))
}

func (b *whereBuilder) addRaw(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.clauses, " AND ")
}

// buildWineFilter translates a filter into a WHERE clause. Empty fields add
// no predicate.
func buildWineFilter(filter domain.WineFilter) *whereBuilder {
	b := &whereBuilder{}

	if t := strings.TrimSpace(filter.Type); t != "" {
		b.add("w.type = $%d", t)
	}
	if g := strings.TrimSpace(filter.Grape); g != "" {
		b.add("EXISTS (SELECT 1 FROM wine_grapes g WHERE g.wine_id = w.id AND g.grape ILIKE $%d)", likePattern(g))
	}
	if filter.MinRating > 0 {
		b.add("w.average_rating >= $%d", filter.MinRating)
	}
	if c := strings.TrimSpace(filter.Country); c != "" {
		b.add("w.country = $%d", c)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		b.add("w.name ILIKE $%d", likePattern(s))
	}

	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps a user term for a substring ILIKE match, escaping the
// LIKE wildcards so they match literally.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
