/*Package loader implements the shared bulk-ingest pipeline behind the
  sam-into-sqlite and vcf-into-sqlite commands: open the destination
  database in unsafe_load mode, stream parsed records through a bounded
  ring (parsing on a background goroutine, insertion on the caller's
  thread inside one write transaction), bootstrap the reference-sequence
  catalog from the input's header, and finally create the Genomic Range
  Index on the loaded table.

  Any failure before the commit rolls back the enclosing transaction,
  leaving the database in its pre-load state.  The Genomic Range Index is
  created after the commit in a transaction of its own, so a failure there
  leaves the loaded rows in place without an index.
*/
package loader

import (
	"database/sql"
	"io"
	"os"

	"github.com/grailbio/base/errors"
	"v.io/x/lib/vlog"

	"github.com/mlin/GenomicSQLite-sub001/encoding/fasta"
	"github.com/mlin/GenomicSQLite-sub001/genomicsqlite"
	"github.com/mlin/GenomicSQLite-sub001/gri"
	"github.com/mlin/GenomicSQLite-sub001/ringio"
)

// Options controls a bulk load.
type Options struct {
	// TablePrefix is prepended to the names of the created tables.
	TablePrefix string
	// NoGRI skips genomic range indexing after the load.
	NoGRI bool
	// InnerPageKiB/OuterPageKiB/ZstdLevel override the page sizing and
	// compression level of the destination; zero keeps the defaults.
	InnerPageKiB int
	OuterPageKiB int
	ZstdLevel    int
	// Quiet suppresses progress logging.
	Quiet bool
	// RefSeqFasta optionally names a FASTA file whose sequences seed the
	// reference catalog (useful for VCF inputs lacking contig headers).
	RefSeqFasta string
}

func (o Options) config() *genomicsqlite.Config {
	cfg := genomicsqlite.DefaultConfig()
	cfg.UnsafeLoad = true
	if o.InnerPageKiB != 0 {
		cfg.InnerPageKiB = o.InnerPageKiB
	}
	if o.OuterPageKiB != 0 {
		cfg.OuterPageKiB = o.OuterPageKiB
	}
	if o.ZstdLevel != 0 {
		cfg.ZstdLevel = o.ZstdLevel
	}
	return &cfg
}

const (
	batchSize    = 4096
	ringCapacity = 4
	progressRows = 1 << 20
)

// batch is one ring item: a bundle of rows ready to insert.
type batch struct {
	rows [][]interface{}
}

// drain inserts every batch arriving on the ring into one prepared
// statement, returning the row count.
func drain(tx *sql.Tx, insertSQL string, ring *ringio.Ring[batch], quiet bool) (int64, error) {
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, errors.E(err, "preparing insert")
	}
	defer stmt.Close() // nolint: errcheck
	var n int64
	for {
		b, err := ring.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		for _, row := range b.rows {
			if _, err := stmt.Exec(row...); err != nil {
				return n, errors.E(err, "inserting row")
			}
			n++
			if !quiet && n%progressRows == 0 {
				vlog.Infof("inserted %d rows", n)
			}
		}
	}
}

// load runs the full pipeline: open, create schema, stream inserts in one
// transaction, then index.  produce fills ring batches on a background
// goroutine; schemaSQL creates the destination table(s); refseqSQL (may be
// empty) seeds the reference catalog.
func load(dbPath, table string, opts Options, schemaSQL, refseqSQL, insertSQL string,
	produce func(item *batch) error) (err error) {
	db, err := genomicsqlite.Open(dbPath, opts.config())
	if err != nil {
		return err
	}
	defer db.Close() // nolint: errcheck

	tx, err := db.Begin()
	if err != nil {
		return errors.E(err, "beginning transaction")
	}
	ring := ringio.New(ringCapacity, produce)
	defer ring.Abort()
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() // nolint: errcheck
		}
	}()
	if _, err := tx.Exec(schemaSQL); err != nil {
		return errors.E(err, "creating schema")
	}
	if refseqSQL != "" {
		if _, err := tx.Exec(refseqSQL); err != nil {
			return errors.E(err, "loading reference sequences")
		}
	}
	n, err := drain(tx, insertSQL, ring, opts.Quiet)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.E(err, "committing load")
	}
	committed = true
	if !opts.Quiet {
		vlog.Infof("%s: loaded %d rows", table, n)
	}
	if !opts.NoGRI {
		if err := gri.CreateRangeIndex(db, table, "rid", "pos", "endpos", -1); err != nil {
			return err
		}
		if !opts.Quiet {
			vlog.Infof("%s: created genomic range index", table)
		}
	}
	return nil
}

// fastaRefSeqSQL builds the reference-catalog script from a FASTA file,
// with dense rids in file order, and returns the name->rid mapping.
func fastaRefSeqSQL(path string) (string, map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, errors.E(err, "opening", path)
	}
	defer f.Close() // nolint: errcheck
	seqs, err := fasta.Scan(f)
	if err != nil {
		return "", nil, errors.E(err, path)
	}
	script := ""
	rids := make(map[string]int64, len(seqs))
	for i, seq := range seqs {
		one, err := gri.PutRefSeqSQL(gri.RefSeq{
			Rid: int64(i), Name: seq.Name, Length: seq.Length, RefgetID: seq.MD5,
		}, "")
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			script += ";\n"
		}
		script += one
		rids[seq.Name] = int64(i)
	}
	return script, rids, nil
}
