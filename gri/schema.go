package gri

import (
	"database/sql"
	"fmt"
	"strings"
)

const metaDDL = `CREATE TABLE IF NOT EXISTS _gri_meta
(tbl TEXT NOT NULL PRIMARY KEY, rid_col TEXT NOT NULL, beg_expr TEXT NOT NULL,
 end_expr TEXT NOT NULL, max_depth INTEGER NOT NULL,
 created_utc TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')))`

// levelExpr builds the SQL expression computing the level of the interval
// [begExpr, endExpr), NULL when either coordinate is NULL or out of domain.
// The CASE tests levels finest-first so the first hit is the largest level
// whose bin at beg also contains end-1 (point intervals use end-1 == beg).
func levelExpr(begExpr, endExpr string, maxLevel int) string {
	b := "(" + begExpr + ")"
	e := fmt.Sprintf("max((%s)-1,%s)", endExpr, b)
	var sb strings.Builder
	fmt.Fprintf(&sb, "CASE WHEN %s IS NULL OR (%s) IS NULL OR %s < 0 OR (%s) < %s OR (%s) > %d THEN NULL",
		b, endExpr, b, endExpr, b, endExpr, MaxPos+1)
	for lvl := maxLevel; lvl > 0; lvl-- {
		sh := binShift * (Levels - lvl)
		fmt.Fprintf(&sb, " WHEN (%s >> %d) = (%s >> %d) THEN %d", b, sh, e, sh, lvl)
	}
	sb.WriteString(" ELSE 0 END")
	return sb.String()
}

// CreateRangeIndexSQL returns the DDL script adding a Genomic Range Index to
// table over (ridCol, begExpr, endExpr).  The script adds the _gri_lvl and
// _gri_beg generated columns, creates the compound (rid, _gri_lvl, _gri_beg)
// index, and records the index in _gri_meta.  The caller executes it inside
// one transaction; CreateRangeIndex does so after checking preconditions.
//
// maxDepth caps the finest populated level to reduce index fanout when most
// intervals are wide; -1 uses all levels.  SQLite recomputes VIRTUAL
// generated columns itself whenever the underlying columns change, so no
// triggers are required to keep the index consistent under UPDATE.
func CreateRangeIndexSQL(table, ridCol, begExpr, endExpr string, maxDepth int) (string, error) {
	if err := checkIdent("table", table); err != nil {
		return "", err
	}
	if err := checkIdent("rid column", ridCol); err != nil {
		return "", err
	}
	if err := checkExpr("beg", begExpr); err != nil {
		return "", err
	}
	if err := checkExpr("end", endExpr); err != nil {
		return "", err
	}
	if maxDepth < -1 || maxDepth > MaxLevel {
		return "", errorf(ErrInvalidArgument, "max_depth %d out of range [-1,%d]", maxDepth, MaxLevel)
	}
	maxLevel := maxDepth
	if maxLevel < 0 {
		maxLevel = MaxLevel
	}
	qt := quoteIdent(table)
	var sb strings.Builder
	fmt.Fprintf(&sb, "ALTER TABLE %s ADD COLUMN _gri_lvl INTEGER AS (%s) VIRTUAL;\n",
		qt, levelExpr(begExpr, endExpr, maxLevel))
	fmt.Fprintf(&sb, "ALTER TABLE %s ADD COLUMN _gri_beg INTEGER AS ((%s)) VIRTUAL;\n",
		qt, begExpr)
	fmt.Fprintf(&sb, "CREATE INDEX %s ON %s (%s, _gri_lvl, _gri_beg);\n",
		quoteIdent(table+"_gri"), qt, quoteIdent(ridCol))
	sb.WriteString(metaDDL + ";\n")
	fmt.Fprintf(&sb, "INSERT INTO _gri_meta(tbl,rid_col,beg_expr,end_expr,max_depth) VALUES(%s,%s,%s,%s,%d)",
		quoteString(table), quoteString(ridCol), quoteString(begExpr), quoteString(endExpr), maxDepth)
	return sb.String(), nil
}

// CreateRangeIndex checks preconditions on the open database, then executes
// the CreateRangeIndexSQL script in one transaction.  It fails with
// ErrNoSuchTable if the table is missing and ErrSchemaConflict if the table
// already carries a GRI (or stray _gri_lvl/_gri_beg columns).
func CreateRangeIndex(db *sql.DB, table, ridCol, begExpr, endExpr string, maxDepth int) error {
	script, err := CreateRangeIndexSQL(table, ridCol, begExpr, endExpr, maxDepth)
	if err != nil {
		return err
	}
	h := DBHandle(db)
	cols, err := tableColumns(h, table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return errorf(ErrNoSuchTable, "no such table: %s", table)
	}
	if cols["_gri_lvl"] || cols["_gri_beg"] {
		return errorf(ErrSchemaConflict, "table %s already has _gri_lvl/_gri_beg columns", table)
	}
	if !cols[ridCol] {
		return errorf(ErrInvalidArgument, "table %s has no column %s", table, ridCol)
	}
	if _, err := IndexSpecOf(h, table); err == nil {
		return errorf(ErrSchemaConflict, "table %s already has a genomic range index", table)
	} else if KindOf(err) != ErrNoIndex {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return hostErr(err, "beginning transaction")
	}
	if _, err := tx.Exec(script); err != nil {
		tx.Rollback() // nolint: errcheck
		return hostErr(err, "creating genomic range index on %s", table)
	}
	if err := tx.Commit(); err != nil {
		return hostErr(err, "creating genomic range index on %s", table)
	}
	return nil
}

// DropRangeIndex removes the GRI from table: the compound index, the two
// generated columns, and the _gri_meta row.
func DropRangeIndex(db *sql.DB, table string) error {
	h := DBHandle(db)
	if _, err := IndexSpecOf(h, table); err != nil {
		return err
	}
	qt := quoteIdent(table)
	script := fmt.Sprintf("DROP INDEX %s;\nALTER TABLE %s DROP COLUMN _gri_lvl;\n"+
		"ALTER TABLE %s DROP COLUMN _gri_beg;\nDELETE FROM _gri_meta WHERE tbl = %s",
		quoteIdent(table+"_gri"), qt, qt, quoteString(table))
	tx, err := db.Begin()
	if err != nil {
		return hostErr(err, "beginning transaction")
	}
	if _, err := tx.Exec(script); err != nil {
		tx.Rollback() // nolint: errcheck
		return hostErr(err, "dropping genomic range index on %s", table)
	}
	if err := tx.Commit(); err != nil {
		return hostErr(err, "dropping genomic range index on %s", table)
	}
	return nil
}
