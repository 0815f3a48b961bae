package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// recordReader is implemented by both sam.Reader and bam.Reader.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

const samColumns = "qname,flag,rid,pos,endpos,mapq,cigar,mate_rid,mate_pos,tlen,seq,qual,tags"

func samSchemaSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s
(qname TEXT, flag INTEGER NOT NULL, rid INTEGER, pos INTEGER, endpos INTEGER,
 mapq INTEGER, cigar TEXT, mate_rid INTEGER, mate_pos INTEGER, tlen INTEGER,
 seq TEXT, qual TEXT, tags TEXT)`, table)
}

// SAMIntoSQLite bulk-loads a SAM or BAM file into the <prefix>reads table
// of dbPath, seeding _gri_refseq from the header's reference dictionary.
func SAMIntoSQLite(dbPath, samPath string, opts Options) error {
	var in io.Reader = os.Stdin
	if samPath != "-" {
		f, err := os.Open(samPath)
		if err != nil {
			return errors.E(err, "opening", samPath)
		}
		defer f.Close() // nolint: errcheck
		in = f
	}
	var (
		reader recordReader
		err    error
	)
	if strings.HasSuffix(filepath.Base(samPath), ".bam") {
		reader, err = bam.NewReader(in, runtime.NumCPU())
	} else {
		reader, err = sam.NewReader(in)
	}
	if err != nil {
		return errors.E(err, "opening", samPath)
	}

	refseqSQL := ""
	for rid, ref := range reader.Header().Refs() {
		one, err := griPutRefSeq(int64(rid), ref.Name(), int64(ref.Len()))
		if err != nil {
			return err
		}
		if rid > 0 {
			refseqSQL += ";\n"
		}
		refseqSQL += one
	}

	table := opts.TablePrefix + "reads"
	insertSQL := fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)",
		table, samColumns, placeholders(13))
	produce := func(b *batch) error {
		b.rows = b.rows[:0]
		for len(b.rows) < batchSize {
			rec, err := reader.Read()
			if rec == nil {
				if err == io.EOF {
					if len(b.rows) == 0 {
						return io.EOF
					}
					return nil
				}
				return errors.E(err, "reading", samPath)
			}
			b.rows = append(b.rows, samRow(rec))
			sam.PutInFreePool(rec)
		}
		return nil
	}
	return load(dbPath, table, opts, samSchemaSQL(table), refseqSQL, insertSQL, produce)
}

func samRow(rec *sam.Record) []interface{} {
	row := make([]interface{}, 0, 13)
	row = append(row, rec.Name, int64(rec.Flags))
	if rec.Ref != nil && rec.Pos >= 0 {
		row = append(row, int64(rec.Ref.ID()), int64(rec.Pos), int64(rec.End()))
	} else {
		row = append(row, nil, nil, nil)
	}
	row = append(row, int64(rec.MapQ), rec.Cigar.String())
	if rec.MateRef != nil && rec.MatePos >= 0 {
		row = append(row, int64(rec.MateRef.ID()), int64(rec.MatePos))
	} else {
		row = append(row, nil, nil)
	}
	row = append(row, int64(rec.TempLen), formatSeq(rec.Seq), formatQual(rec.Qual), formatAux(rec.AuxFields))
	return row
}

func formatSeq(seq sam.Seq) string {
	return string(seq.Expand())
}

func formatQual(qual []byte) string {
	if len(qual) == 0 {
		return "*"
	}
	buf := make([]byte, len(qual))
	for i, q := range qual {
		buf[i] = q + 33
	}
	return string(buf)
}

func formatAux(aux []sam.Aux) string {
	if len(aux) == 0 {
		return ""
	}
	strs := make([]string, len(aux))
	for i, a := range aux {
		strs[i] = a.String()
	}
	return strings.Join(strs, "\t")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
