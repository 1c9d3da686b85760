package dbx

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names the SQL flavour a repository talks to. Queries are written
// with '?' placeholders and rebound per dialect before execution.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "pgx", "postgres":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
// Only Postgres needs rewriting ($1, $2, ...). Question marks inside
// single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// LikeOperator returns a case-insensitive LIKE for the dialect.
func (d Dialect) LikeOperator() string {
	if d == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains returns a case-insensitive substring condition on column and
// the pattern to bind for it. Wildcards in term match only themselves.
func (d Dialect) Contains(column, term string) (cond, pattern string) {
	escape := `'\'`
	if d == MySQL {
		// backslash is also the string literal escape in MySQL
		escape = `'\\'`
	}
	return column + " " + d.LikeOperator() + " ? ESCAPE " + escape, "%" + likeEscaper.Replace(term) + "%"
}
