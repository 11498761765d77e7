package sqlexec

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect adapta la sentencia compilada (con marcadores '?') al motor.
type Dialect interface {
	Name() string
	// Rebind reescribe los marcadores '?' al formato del motor.
	Rebind(sql string) string
	// Finalize traduce operadores que el motor no soporta.
	Finalize(sql string) string
	// QuoteIdent protege un identificador para conservar mayúsculas.
	QuoteIdent(name string) string
}

var (
	Postgres   Dialect = postgresDialect{}
	SQLite     Dialect = sqliteDialect{}
	ClickHouse Dialect = clickhouseDialect{}
)

// DialectFor devuelve el dialecto asociado a un nombre de driver.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "clickhouse":
		return ClickHouse, nil
	}
	return nil, fmt.Errorf("unsupported sql dialect %q", driver)
}

// ---------------- Postgres ($1, $2...) ----------------

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Rebind(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := 0
	inQuote := false
	for _, r := range sql {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (postgresDialect) Finalize(sql string) string { return sql }

func (postgresDialect) QuoteIdent(name string) string { return doubleQuote(name) }

func doubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ---------------- SQLite (?) ----------------

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }
func (sqliteDialect) Rebind(sql string) string { return sql }
func (sqliteDialect) QuoteIdent(name string) string { return doubleQuote(name) }

// Finalize: SQLite no tiene ILIKE, pero su LIKE ya ignora mayúsculas en ASCII.
func (sqliteDialect) Finalize(sql string) string {
	return strings.ReplaceAll(sql, " ILIKE ", " LIKE ")
}

// ---------------- ClickHouse (?) ----------------

type clickhouseDialect struct{}

func (clickhouseDialect) Name() string { return "clickhouse" }
func (clickhouseDialect) Rebind(sql string) string { return sql }

func (clickhouseDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Finalize: el LIKE de ClickHouse ya escapa con '\' y no admite ESCAPE.
func (clickhouseDialect) Finalize(sql string) string {
	return strings.ReplaceAll(sql, ` ESCAPE '\'`, "")
}
