package genomicsqlite

import (
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/mattn/go-sqlite3"

	"github.com/mlin/GenomicSQLite-sub001/gri"
)

// registerFunctions installs the GenomicSQLite SQL surface on one
// connection.  The SQL-generator functions that need database introspection
// (genomic_range_rowids_sql and the genomic_range_rowids table-valued
// function) compile against the very connection that invoked them.
func registerFunctions(conn *sqlite3.SQLiteConn) error {
	scalars := []struct {
		name string
		impl interface{}
		pure bool
	}{
		{"genomicsqlite_version", func() string { return Version }, true},
		{"genomicsqlite_default_config_json", DefaultConfigJSON, true},
		{"genomic_range_bin", func(args ...int64) (int64, error) {
			switch len(args) {
			case 2:
				lvl, err := gri.Level(args[0], args[1])
				return int64(lvl), err
			case 3:
				lvl, err := gri.LevelCapped(args[0], args[1], int(args[2]))
				return int64(lvl), err
			}
			return 0, fmt.Errorf("genomic_range_bin expects 2 or 3 arguments, got %d", len(args))
		}, true},
		{"create_genomic_range_index_sql", func(table, rid, beg, end string, maxDepth int64) (string, error) {
			return gri.CreateRangeIndexSQL(table, rid, beg, end, int(maxDepth))
		}, true},
		{"genomic_range_rowids_sql", func(table, qrid, qbeg, qend string) (string, error) {
			return gri.RangeRowIDsSQLHandle(connHandle{conn}, table, qrid, qbeg, qend)
		}, false},
		{"genomicsqlite_vacuum_into_sql", func(destFile, configJSON string) (string, error) {
			cfg, err := MergeConfigJSON(configJSON)
			if err != nil {
				return "", err
			}
			return VacuumIntoSQL(destFile, &cfg)
		}, true},
		{"put_genomic_reference_sequence_sql", func(name string, length int64, assembly, refgetID, metaJSON string, rid int64, schema string) (string, error) {
			return gri.PutRefSeqSQL(gri.RefSeq{
				Rid: rid, Name: name, Length: length,
				Assembly: assembly, RefgetID: refgetID, MetaJSON: metaJSON,
			}, schema)
		}, true},
		{"put_genomic_reference_assembly_sql", func(assembly, schema string) (string, error) {
			return gri.PutAssemblySQL(assembly, schema)
		}, true},
	}
	for _, fn := range scalars {
		if err := conn.RegisterFunc(fn.name, fn.impl, fn.pure); err != nil {
			return errors.E(err, "registering SQL function", fn.name)
		}
	}
	if err := conn.CreateModule("genomic_range_rowids", &rowidsModule{conn: conn}); err != nil {
		return errors.E(err, "registering genomic_range_rowids")
	}
	return nil
}

// connHandle adapts a raw driver connection to gri.Handle so query
// compilation inside a SQL function runs re-entrantly on the invoking
// connection (reaching its attached databases and uncommitted state).
type connHandle struct{ conn *sqlite3.SQLiteConn }

func (h connHandle) Query(query string, args ...interface{}) (gri.Rows, error) {
	dargs := make([]driver.Value, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case int:
			dargs[i] = int64(v)
		case int64, float64, string, []byte, bool, nil:
			dargs[i] = v
		default:
			return nil, fmt.Errorf("unsupported query argument type %T", a)
		}
	}
	rows, err := h.conn.Query(query, dargs)
	if err != nil {
		return nil, err
	}
	return &driverRows{rows: rows, buf: make([]driver.Value, len(rows.Columns()))}, nil
}

type driverRows struct {
	rows driver.Rows
	buf  []driver.Value
	err  error
}

func (r *driverRows) Next() bool {
	switch err := r.rows.Next(r.buf); err {
	case nil:
		return true
	case io.EOF:
		return false
	default:
		r.err = err
		return false
	}
}

func (r *driverRows) Scan(dest ...interface{}) error {
	if len(dest) > len(r.buf) {
		return fmt.Errorf("scanning %d values from a %d-column row", len(dest), len(r.buf))
	}
	for i, d := range dest {
		src := r.buf[i]
		switch d := d.(type) {
		case *int64:
			switch s := src.(type) {
			case int64:
				*d = s
			case nil:
				*d = 0
			default:
				return fmt.Errorf("column %d: cannot scan %T into int64", i, src)
			}
		case *string:
			switch s := src.(type) {
			case string:
				*d = s
			case []byte:
				*d = string(s)
			case nil:
				*d = ""
			default:
				return fmt.Errorf("column %d: cannot scan %T into string", i, src)
			}
		case *interface{}:
			*d = src
		default:
			return fmt.Errorf("column %d: unsupported scan destination %T", i, d)
		}
	}
	return nil
}

func (r *driverRows) Err() error   { return r.err }
func (r *driverRows) Close() error { return r.rows.Close() }
