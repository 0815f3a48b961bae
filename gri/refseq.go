package gri

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const refseqDDL = `CREATE TABLE IF NOT EXISTS %s_gri_refseq
(rid INTEGER NOT NULL PRIMARY KEY, name TEXT NOT NULL UNIQUE, length INTEGER NOT NULL,
 assembly TEXT, refget_id TEXT, meta_json TEXT NOT NULL DEFAULT '{}')`

// RefSeq is one reference sequence (contig) in the _gri_refseq dimension
// catalog.  Rid is a dense nonnegative integer; indexed tables refer to
// contigs by rid only.
type RefSeq struct {
	Rid      int64  `db:"rid" json:"rid"`
	Name     string `db:"name" json:"name"`
	Length   int64  `db:"length" json:"length"`
	Assembly string `db:"assembly" json:"assembly,omitempty"`
	RefgetID string `db:"refget_id" json:"refget_id,omitempty"`
	MetaJSON string `db:"meta_json" json:"meta_json,omitempty"`
}

func schemaPrefix(schema string) (string, error) {
	if schema == "" {
		return "", nil
	}
	if err := checkIdent("schema", schema); err != nil {
		return "", err
	}
	return quoteIdent(schema) + ".", nil
}

// PutRefSeqSQL returns a script creating _gri_refseq if needed and
// inserting one reference sequence.  seq.Rid < 0 auto-assigns the next
// dense rid.  schema optionally targets an attached database.
func PutRefSeqSQL(seq RefSeq, schema string) (string, error) {
	if seq.Name == "" {
		return "", errorf(ErrInvalidArgument, "reference sequence name must be non-empty")
	}
	if seq.Length < 0 || seq.Length > MaxPos+1 {
		return "", errorf(ErrOutOfRange, "reference sequence length %d outside [0,%d]", seq.Length, MaxPos+1)
	}
	if seq.MetaJSON != "" && !json.Valid([]byte(seq.MetaJSON)) {
		return "", errorf(ErrInvalidArgument, "meta_json is not valid JSON")
	}
	prefix, err := schemaPrefix(schema)
	if err != nil {
		return "", err
	}
	table := prefix + "_gri_refseq"
	rid := fmt.Sprintf("%d", seq.Rid)
	if seq.Rid < 0 {
		rid = fmt.Sprintf("(SELECT coalesce(max(rid)+1, 0) FROM %s)", table)
	}
	nullable := func(s string) string {
		if s == "" {
			return "NULL"
		}
		return quoteString(s)
	}
	meta := seq.MetaJSON
	if meta == "" {
		meta = "{}"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, refseqDDL+";\n", prefix)
	fmt.Fprintf(&sb, "INSERT INTO %s(rid,name,length,assembly,refget_id,meta_json) VALUES(%s,%s,%d,%s,%s,%s)",
		table, rid, quoteString(seq.Name), seq.Length,
		nullable(seq.Assembly), nullable(seq.RefgetID), quoteString(meta))
	return sb.String(), nil
}

// PutAssemblySQL returns a script populating _gri_refseq with the primary
// contigs (chromosomes and mitochondrion) of a known assembly; unplaced,
// alternate and decoy contigs are not included.  Dense rids are assigned in the
// conventional order, so callers can bootstrap a standard assembly without
// external files.  Known assemblies: GRCh38_no_alt_analysis_set, hs37d5.
func PutAssemblySQL(assembly, schema string) (string, error) {
	contigs, ok := assemblies[assembly]
	if !ok {
		known := make([]string, 0, len(assemblies))
		for name := range assemblies {
			known = append(known, name)
		}
		return "", errorf(ErrInvalidArgument, "unknown assembly %q (known: %s)", assembly, strings.Join(known, ", "))
	}
	var sb strings.Builder
	for i, c := range contigs {
		one, err := PutRefSeqSQL(RefSeq{Rid: int64(i), Name: c.name, Length: c.length, Assembly: assembly}, schema)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(";\n")
			// The CREATE TABLE IF NOT EXISTS preamble only needs to appear
			// once.
			one = one[strings.Index(one, "INSERT"):]
		}
		sb.WriteString(one)
	}
	return sb.String(), nil
}

// RefSeqsByRid returns the reference-sequence catalog keyed by rid.
func RefSeqsByRid(db *sql.DB) (map[int64]RefSeq, error) {
	seqs, err := refSeqs(db)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]RefSeq, len(seqs))
	for _, s := range seqs {
		out[s.Rid] = s
	}
	return out, nil
}

// RefSeqsByName returns the reference-sequence catalog keyed by contig
// name.
func RefSeqsByName(db *sql.DB) (map[string]RefSeq, error) {
	seqs, err := refSeqs(db)
	if err != nil {
		return nil, err
	}
	out := make(map[string]RefSeq, len(seqs))
	for _, s := range seqs {
		out[s.Name] = s
	}
	return out, nil
}

func refSeqs(db *sql.DB) ([]RefSeq, error) {
	xdb := sqlx.NewDb(db, "sqlite3")
	var seqs []RefSeq
	err := xdb.Select(&seqs,
		`SELECT rid, name, length, coalesce(assembly,'') AS assembly,
		        coalesce(refget_id,'') AS refget_id, coalesce(meta_json,'{}') AS meta_json
		   FROM _gri_refseq ORDER BY rid`)
	if err != nil {
		return nil, hostErr(err, "reading _gri_refseq")
	}
	return seqs, nil
}
