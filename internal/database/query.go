package database

import "strings"

// QueryBuilder rewrites ? placeholders for the dialect in use.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a QueryBuilder for dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build numbers the placeholders of query for PostgreSQL and leaves it
// alone for SQLite. A ? inside a quoted literal is not a placeholder.
//
//	"DELETE FROM rosters WHERE expires_at <= ? AND code <> '?'"
//	→ "DELETE FROM rosters WHERE expires_at <= $1 AND code <> '?'"
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			b.WriteString(qb.dialect.Placeholder(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
