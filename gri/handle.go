package gri

import (
	"database/sql"
	"regexp"
	"strings"
)

// Rows is the subset of *sql.Rows the SQL generators consume.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// Handle runs read-only queries against an open database.  DBHandle adapts
// *sql.DB; package genomicsqlite provides an adapter for a raw driver
// connection so the registered SQL functions can compile queries against
// the very connection that invoked them.
type Handle interface {
	Query(query string, args ...interface{}) (Rows, error)
}

type dbHandle struct{ db *sql.DB }

func (h dbHandle) Query(query string, args ...interface{}) (Rows, error) {
	return h.db.Query(query, args...)
}

// DBHandle wraps a *sql.DB as a Handle.
func DBHandle(db *sql.DB) Handle { return dbHandle{db} }

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdent(what, s string) error {
	if !identRE.MatchString(s) {
		return errorf(ErrInvalidArgument, "invalid %s identifier %q", what, s)
	}
	return nil
}

// checkExpr admits column names and simple arithmetic expressions but
// rejects anything that could terminate or comment out the surrounding
// statement.
func checkExpr(what, s string) error {
	if strings.TrimSpace(s) == "" ||
		strings.ContainsAny(s, ";'\"") || strings.Contains(s, "--") {
		return errorf(ErrInvalidArgument, "invalid %s expression %q", what, s)
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// tableColumns returns the column names of a table (empty if the table does
// not exist).
func tableColumns(h Handle, table string) (map[string]bool, error) {
	rows, err := h.Query("PRAGMA table_info(" + quoteIdent(table) + ")")
	if err != nil {
		return nil, hostErr(err, "inspecting table %s", table)
	}
	defer rows.Close() // nolint: errcheck
	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid, notnull, pk int64
			name, cftype     string
			dfltValue        interface{}
		)
		if err := rows.Scan(&cid, &name, &cftype, &notnull, &dfltValue, &pk); err != nil {
			return nil, hostErr(err, "inspecting table %s", table)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, hostErr(err, "inspecting table %s", table)
	}
	return cols, nil
}
