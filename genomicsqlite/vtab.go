package genomicsqlite

import (
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mlin/GenomicSQLite-sub001/gri"
)

// rowidsModule implements the eponymous table-valued function
//
//	genomic_range_rowids(tableName, qrid, qbeg, qend)
//
// yielding the _rowid_ of every row of tableName whose interval overlaps
// [qbeg, qend) on qrid.  Each call compiles the optimized overlap query on
// the invoking connection and runs it re-entrantly.
type rowidsModule struct {
	conn *sqlite3.SQLiteConn
}

func (m *rowidsModule) EponymousOnlyModule() {}

func (m *rowidsModule) Create(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	return m.Connect(c, args)
}

func (m *rowidsModule) Connect(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	err := c.DeclareVTab("CREATE TABLE x(rowid_result INTEGER, tbl HIDDEN TEXT, qrid HIDDEN INTEGER, qbeg HIDDEN INTEGER, qend HIDDEN INTEGER)")
	if err != nil {
		return nil, err
	}
	return &rowidsTab{conn: m.conn}, nil
}

func (m *rowidsModule) DestroyModule() {}

type rowidsTab struct {
	conn *sqlite3.SQLiteConn
}

func (t *rowidsTab) BestIndex(csts []sqlite3.InfoConstraint, ob []sqlite3.InfoOrderBy) (*sqlite3.IndexResult, error) {
	used := make([]bool, len(csts))
	// Require an equality constraint on each of the four hidden argument
	// columns; their order of appearance defines the Filter argv order.
	argv := ""
	seen := map[int]bool{}
	for i, cst := range csts {
		if cst.Column >= 1 && cst.Column <= 4 {
			if !cst.Usable || cst.Op != sqlite3.OpEQ {
				continue
			}
			used[i] = true
			argv += fmt.Sprintf("%d", cst.Column)
			seen[cst.Column] = true
		}
	}
	if len(seen) != 4 {
		return nil, fmt.Errorf("genomic_range_rowids expects (tableName, qrid, qbeg, qend) arguments")
	}
	return &sqlite3.IndexResult{
		Used:          used,
		IdxNum:        0,
		IdxStr:        argv,
		EstimatedCost: 1000,
	}, nil
}

func (t *rowidsTab) Open() (sqlite3.VTabCursor, error) {
	return &rowidsCursor{tab: t}, nil
}

func (t *rowidsTab) Disconnect() error { return nil }
func (t *rowidsTab) Destroy() error    { return nil }

type rowidsCursor struct {
	tab    *rowidsTab
	args   [4]interface{} // tableName, qrid, qbeg, qend as bound
	rowids []int64
	pos    int
}

func (c *rowidsCursor) Filter(idxNum int, idxStr string, vals []interface{}) error {
	if len(vals) != len(idxStr) {
		return fmt.Errorf("genomic_range_rowids: expected %d arguments, got %d", len(idxStr), len(vals))
	}
	for i, ch := range idxStr {
		c.args[ch-'1'] = vals[i]
	}
	table, ok := c.args[0].(string)
	if !ok {
		return fmt.Errorf("genomic_range_rowids: tableName must be TEXT")
	}
	h := connHandle{c.tab.conn}
	query, err := gri.RangeRowIDsSQLHandle(h, table, "", "", "")
	if err != nil {
		return err
	}
	rows, err := h.Query("SELECT * FROM "+query, c.args[1], c.args[2], c.args[3])
	if err != nil {
		return err
	}
	defer rows.Close() // nolint: errcheck
	c.rowids = c.rowids[:0]
	c.pos = 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		c.rowids = append(c.rowids, id)
	}
	return rows.Err()
}

func (c *rowidsCursor) Next() error {
	c.pos++
	return nil
}

func (c *rowidsCursor) EOF() bool {
	return c.pos >= len(c.rowids)
}

func (c *rowidsCursor) Column(ctx *sqlite3.SQLiteContext, col int) error {
	switch col {
	case 0:
		ctx.ResultInt64(c.rowids[c.pos])
	case 1:
		if s, ok := c.args[0].(string); ok {
			ctx.ResultText(s)
		} else {
			ctx.ResultNull()
		}
	case 2, 3, 4:
		if v, ok := c.args[col-1].(int64); ok {
			ctx.ResultInt64(v)
		} else {
			ctx.ResultNull()
		}
	default:
		return fmt.Errorf("genomic_range_rowids: no column %d", col)
	}
	return nil
}

func (c *rowidsCursor) Rowid() (int64, error) {
	return c.rowids[c.pos], nil
}

func (c *rowidsCursor) Close() error { return nil }
