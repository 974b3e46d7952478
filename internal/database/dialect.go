package database

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour spoken by the configured backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectTrino    Dialect = "trino"
)

// ParseDialect maps a configured database type onto a Dialect.
func ParseDialect(name string) (Dialect, bool) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case DialectSQLite, DialectPostgres, DialectTrino:
		return d, true
	default:
		return "", false
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// EnforcesUniqueness reports whether the backend supports UNIQUE constraints
// and INSERT ... ON CONFLICT. Iceberg tables behind Trino do not.
func (d Dialect) EnforcesUniqueness() bool {
	return d == DialectSQLite || d == DialectPostgres
}

// OrderByInsertion returns the clause that keeps rows in insertion order, or
// an empty string when the backend has no insertion sequence.
func (d Dialect) OrderByInsertion() string {
	if d == DialectTrino {
		return ""
	}
	return " ORDER BY id"
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}
