package gri

import (
	"database/sql"
	"fmt"
	"strings"
)

// Default query parameter expressions: the emitted SELECT is drop-in usable
// with positional prepared-statement binding.
const (
	defaultQrid = "?1"
	defaultQbeg = "?2"
	defaultQend = "?3"
)

// levelWidth pairs a populated level with an upper bound on the width of
// the intervals stored at it.
type levelWidth struct {
	level int
	width int64
}

// rowIDsSQL emits the overlap query over the given levels.  Each level
// clause probes one contiguous _gri_beg range of the compound index; the
// trailing beg/end predicates discard the false positives the left
// extension admits.
func rowIDsSQL(s IndexSpec, levels []levelWidth, qrid, qbeg, qend string) string {
	if qrid == "" {
		qrid = defaultQrid
	}
	if qbeg == "" {
		qbeg = defaultQbeg
	}
	if qend == "" {
		qend = defaultQend
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "(SELECT _rowid_ FROM %s WHERE (%s = (%s)) AND (",
		quoteIdent(s.Table), quoteIdent(s.RidCol), qrid)
	for i, lw := range levels {
		if i > 0 {
			sb.WriteString("\n  OR ")
		}
		w := lw.width
		if w < 1 {
			w = 1
		}
		fmt.Fprintf(&sb, "(_gri_lvl = %d AND _gri_beg BETWEEN max(0,(%s) - %d + 1) AND (%s) - 1)",
			lw.level, qbeg, w, qend)
	}
	fmt.Fprintf(&sb, ") AND (%s) > (%s) AND (%s) < (%s))", s.EndExpr, qbeg, s.BegExpr, qend)
	return sb.String()
}

// RowIDsSQL compiles the safe (unoptimized) overlap query from the
// IndexSpec alone: every level up to MaxDepth is probed with the fixed
// width bound
// BinWidth(L).  The result stays correct across any subsequent writes.
// Empty qrid/qbeg/qend default to ?1/?2/?3.
func (s IndexSpec) RowIDsSQL(qrid, qbeg, qend string) string {
	levels := make([]levelWidth, 0, s.maxLevel()+1)
	for lvl := 0; lvl <= s.maxLevel(); lvl++ {
		levels = append(levels, levelWidth{lvl, BinWidth(lvl)})
	}
	return rowIDsSQL(s, levels, qrid, qbeg, qend)
}

// RangeRowIDsSQL compiles the optimized overlap query for a GRI-indexed
// table: it reads _gri_meta, observes which levels are actually populated
// and the maximum interval width at each, and emits range clauses only for
// those levels with the tightest sound BETWEEN windows.
//
// The optimized query is stale — though never wrong for the data it was
// compiled against — once a write populates a new level or stores an
// interval wider than any previously indexed on its level; regenerate after
// such writes, or use IndexSpec.RowIDsSQL, which is safe across updates.
func RangeRowIDsSQL(db *sql.DB, table, qrid, qbeg, qend string) (string, error) {
	return RangeRowIDsSQLHandle(DBHandle(db), table, qrid, qbeg, qend)
}

// RangeRowIDsSQLHandle is RangeRowIDsSQL over an abstract Handle.
func RangeRowIDsSQLHandle(h Handle, table, qrid, qbeg, qend string) (string, error) {
	spec, err := IndexSpecOf(h, table)
	if err != nil {
		return "", err
	}
	for _, q := range []struct{ what, expr string }{
		{"qrid", qrid}, {"qbeg", qbeg}, {"qend", qend},
	} {
		if q.expr != "" {
			if err := checkExpr(q.what, q.expr); err != nil {
				return "", err
			}
		}
	}
	levels, err := populatedLevels(h, spec)
	if err != nil {
		return "", err
	}
	if len(levels) == 0 {
		// Empty table: no populated level to probe, so fall back to the
		// safe form rather than emit a degenerate disjunction.
		return spec.RowIDsSQL(qrid, qbeg, qend), nil
	}
	return rowIDsSQL(spec, levels, qrid, qbeg, qend), nil
}

// populatedLevels scans the index once for the set of populated levels and
// the observed maximum interval width at each.
func populatedLevels(h Handle, s IndexSpec) ([]levelWidth, error) {
	q := fmt.Sprintf("SELECT _gri_lvl, max((%s) - (%s)) FROM %s WHERE _gri_lvl IS NOT NULL GROUP BY _gri_lvl ORDER BY _gri_lvl",
		s.EndExpr, s.BegExpr, quoteIdent(s.Table))
	rows, err := h.Query(q)
	if err != nil {
		return nil, hostErr(err, "scanning level statistics of %s", s.Table)
	}
	defer rows.Close() // nolint: errcheck
	var levels []levelWidth
	for rows.Next() {
		var lvl, width int64
		if err := rows.Scan(&lvl, &width); err != nil {
			return nil, hostErr(err, "scanning level statistics of %s", s.Table)
		}
		if lvl < 0 || lvl > int64(s.maxLevel()) {
			return nil, errorf(ErrSchemaDrift, "table %s has _gri_lvl %d beyond the recorded max depth", s.Table, lvl)
		}
		levels = append(levels, levelWidth{int(lvl), width})
	}
	if err := rows.Err(); err != nil {
		return nil, hostErr(err, "scanning level statistics of %s", s.Table)
	}
	return levels, nil
}
