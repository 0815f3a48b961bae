package gri

import "strings"

// IndexSpec records how a table's GRI was created; it is the _gri_meta row
// for that table.  A caller who retains the creation-time arguments can
// build one directly and compile safe overlap queries without a database
// handle (RowIDsSQL).
type IndexSpec struct {
	Table    string
	RidCol   string
	BegExpr  string
	EndExpr  string
	MaxDepth int
}

// maxLevel is the finest level the index populates.
func (s IndexSpec) maxLevel() int {
	if s.MaxDepth < 0 || s.MaxDepth > MaxLevel {
		return MaxLevel
	}
	return s.MaxDepth
}

// IndexSpecOf reads the _gri_meta row for table and verifies the recorded
// columns still exist.  Fails with ErrNoIndex when the table has no GRI and
// ErrSchemaDrift when its columns have diverged since index creation.
func IndexSpecOf(h Handle, table string) (IndexSpec, error) {
	var spec IndexSpec
	rows, err := h.Query("SELECT tbl, rid_col, beg_expr, end_expr, max_depth FROM _gri_meta WHERE tbl = ?", table)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return spec, errorf(ErrNoIndex, "no genomic range index on table %s", table)
		}
		return spec, hostErr(err, "reading _gri_meta")
	}
	defer rows.Close() // nolint: errcheck
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return spec, hostErr(err, "reading _gri_meta")
		}
		return spec, errorf(ErrNoIndex, "no genomic range index on table %s", table)
	}
	var maxDepth int64
	if err := rows.Scan(&spec.Table, &spec.RidCol, &spec.BegExpr, &spec.EndExpr, &maxDepth); err != nil {
		return spec, hostErr(err, "reading _gri_meta")
	}
	spec.MaxDepth = int(maxDepth)
	cols, err := tableColumns(h, table)
	if err != nil {
		return spec, err
	}
	if len(cols) == 0 {
		return spec, errorf(ErrNoSuchTable, "no such table: %s", table)
	}
	for _, c := range []string{spec.RidCol, "_gri_lvl", "_gri_beg"} {
		if !cols[c] {
			return spec, errorf(ErrSchemaDrift, "table %s is missing column %s recorded at index creation", table, c)
		}
	}
	// When beg/end were given as bare column names, verify those too;
	// compound expressions are checked only at query time.
	for _, c := range []string{spec.BegExpr, spec.EndExpr} {
		if identRE.MatchString(c) && !cols[c] {
			return spec, errorf(ErrSchemaDrift, "table %s is missing column %s recorded at index creation", table, c)
		}
	}
	return spec, nil
}
