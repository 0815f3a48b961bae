package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/errors"

	"github.com/mlin/GenomicSQLite-sub001/encoding/vcf"
	"github.com/mlin/GenomicSQLite-sub001/gri"
)

func griPutRefSeq(rid int64, name string, length int64) (string, error) {
	return gri.PutRefSeqSQL(gri.RefSeq{Rid: rid, Name: name, Length: length}, "")
}

const vcfColumns = "rid,pos,endpos,id,ref,alt,qual,filter,info,genotypes"

func vcfSchemaSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s
(rid INTEGER NOT NULL, pos INTEGER NOT NULL, endpos INTEGER NOT NULL,
 id TEXT, ref TEXT NOT NULL, alt TEXT, qual REAL, filter TEXT, info TEXT,
 genotypes TEXT)`, table)
}

func vcfLinesSchemaSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s
(rid INTEGER NOT NULL, pos INTEGER NOT NULL, endpos INTEGER NOT NULL,
 line TEXT NOT NULL)`, table)
}

// vcfRefSeqs resolves the name->rid mapping and the catalog script for a
// VCF load: from --refseq-fasta when given, else from the header's contig
// declarations.
func vcfRefSeqs(header *vcf.Header, opts Options) (string, map[string]int64, error) {
	if opts.RefSeqFasta != "" {
		return fastaRefSeqSQL(opts.RefSeqFasta)
	}
	if len(header.Contigs) == 0 {
		return "", nil, errors.E("VCF header declares no contigs; provide a reference FASTA")
	}
	script := ""
	rids := make(map[string]int64, len(header.Contigs))
	for i, c := range header.Contigs {
		length := c.Length
		if length < 0 {
			length = 0
		}
		one, err := griPutRefSeq(int64(i), c.Name, length)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			script += ";\n"
		}
		script += one
		rids[c.Name] = int64(i)
	}
	return script, rids, nil
}

func openVCF(vcfPath string) (*vcf.Reader, func(), error) {
	var in io.Reader = os.Stdin
	cleanup := func() {}
	if vcfPath != "-" {
		f, err := os.Open(vcfPath)
		if err != nil {
			return nil, nil, errors.E(err, "opening", vcfPath)
		}
		cleanup = func() { f.Close() } // nolint: errcheck
		in = f
	}
	reader, err := vcf.NewReader(in)
	if err != nil {
		cleanup()
		return nil, nil, errors.E(err, vcfPath)
	}
	return reader, cleanup, nil
}

// VCFIntoSQLite bulk-loads a VCF into the <prefix>variants table of
// dbPath, with the fixed fields parsed into columns.
func VCFIntoSQLite(dbPath, vcfPath string, opts Options) error {
	reader, cleanup, err := openVCF(vcfPath)
	if err != nil {
		return err
	}
	defer cleanup()
	refseqSQL, rids, err := vcfRefSeqs(reader.Header(), opts)
	if err != nil {
		return err
	}
	table := opts.TablePrefix + "variants"
	insertSQL := fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)",
		table, vcfColumns, placeholders(10))
	produce := func(b *batch) error {
		b.rows = b.rows[:0]
		for len(b.rows) < batchSize {
			rec, err := reader.Read()
			if err == io.EOF {
				if len(b.rows) == 0 {
					return io.EOF
				}
				return nil
			}
			if err != nil {
				return err
			}
			rid, ok := rids[rec.Chrom]
			if !ok {
				return errors.E("record on undeclared contig", rec.Chrom)
			}
			var qual interface{}
			if rec.HasQual {
				qual = rec.Qual
			}
			b.rows = append(b.rows, []interface{}{
				rid, rec.Beg, rec.End, nullDot(rec.ID), rec.Ref,
				strings.Join(rec.Alt, ","), qual, nullDot(rec.Filter),
				nullDot(rec.Info), strings.Join(rec.Genotypes, "\t"),
			})
		}
		return nil
	}
	return load(dbPath, table, opts, vcfSchemaSQL(table), refseqSQL, insertSQL, produce)
}

// VCFLinesIntoSQLite bulk-loads a VCF into the <prefix>vcf_lines table of
// dbPath, storing each data line verbatim alongside its genomic interval.
func VCFLinesIntoSQLite(dbPath, vcfPath string, opts Options) error {
	reader, cleanup, err := openVCF(vcfPath)
	if err != nil {
		return err
	}
	defer cleanup()
	refseqSQL, rids, err := vcfRefSeqs(reader.Header(), opts)
	if err != nil {
		return err
	}
	table := opts.TablePrefix + "vcf_lines"
	insertSQL := fmt.Sprintf("INSERT INTO %s(rid,pos,endpos,line) VALUES(%s)",
		table, placeholders(4))
	produce := func(b *batch) error {
		b.rows = b.rows[:0]
		for len(b.rows) < batchSize {
			rec, err := reader.Read()
			if err == io.EOF {
				if len(b.rows) == 0 {
					return io.EOF
				}
				return nil
			}
			if err != nil {
				return err
			}
			rid, ok := rids[rec.Chrom]
			if !ok {
				return errors.E("record on undeclared contig", rec.Chrom)
			}
			b.rows = append(b.rows, []interface{}{rid, rec.Beg, rec.End, rec.Line})
		}
		return nil
	}
	return load(dbPath, table, opts, vcfLinesSchemaSQL(table), refseqSQL, insertSQL, produce)
}

func nullDot(s string) interface{} {
	if s == "" || s == "." {
		return nil
	}
	return s
}
