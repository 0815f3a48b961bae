package gri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutRefSeqSQL(t *testing.T) {
	db := openTestDB(t)
	script, err := PutRefSeqSQL(RefSeq{Rid: 0, Name: "chr1", Length: 248956422, Assembly: "GRCh38_no_alt_analysis_set"}, "")
	require.NoError(t, err)
	assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS _gri_refseq")
	assert.Contains(t, script, "VALUES(0,'chr1',248956422,'GRCh38_no_alt_analysis_set',NULL,'{}')")
	_, err = db.Exec(script)
	require.NoError(t, err)

	// rid < 0 auto-assigns the next dense rid.
	script, err = PutRefSeqSQL(RefSeq{Rid: -1, Name: "chr2", Length: 242193529}, "")
	require.NoError(t, err)
	assert.Contains(t, script, "(SELECT coalesce(max(rid)+1, 0) FROM _gri_refseq)")
	_, err = db.Exec(script)
	require.NoError(t, err)

	byRid, err := RefSeqsByRid(db)
	require.NoError(t, err)
	require.Len(t, byRid, 2)
	assert.Equal(t, "chr2", byRid[1].Name)
	byName, err := RefSeqsByName(db)
	require.NoError(t, err)
	assert.Equal(t, int64(248956422), byName["chr1"].Length)
	assert.Equal(t, "GRCh38_no_alt_analysis_set", byName["chr1"].Assembly)
}

func TestPutRefSeqSQLBadArgs(t *testing.T) {
	_, err := PutRefSeqSQL(RefSeq{Name: "", Length: 1}, "")
	assert.Equal(t, ErrInvalidArgument, KindOf(err))
	_, err = PutRefSeqSQL(RefSeq{Name: "chr1", Length: -1}, "")
	assert.Equal(t, ErrOutOfRange, KindOf(err))
	_, err = PutRefSeqSQL(RefSeq{Name: "chr1", Length: 1, MetaJSON: "{"}, "")
	assert.Equal(t, ErrInvalidArgument, KindOf(err))
	_, err = PutRefSeqSQL(RefSeq{Name: "chr1", Length: 1}, "bad schema")
	assert.Equal(t, ErrInvalidArgument, KindOf(err))
	// Embedded quote must not escape the SQL literal.
	script, err := PutRefSeqSQL(RefSeq{Name: "chr'1", Length: 1}, "")
	require.NoError(t, err)
	assert.Contains(t, script, "'chr''1'")
}

func TestPutAssemblySQL(t *testing.T) {
	db := openTestDB(t)
	script, err := PutAssemblySQL("GRCh38_no_alt_analysis_set", "")
	require.NoError(t, err)
	_, err = db.Exec(script)
	require.NoError(t, err)

	byName, err := RefSeqsByName(db)
	require.NoError(t, err)
	require.Len(t, byName, 25)
	assert.Equal(t, int64(0), byName["chr1"].Rid)
	assert.Equal(t, int64(24), byName["chrM"].Rid)
	assert.Equal(t, int64(16569), byName["chrM"].Length)

	_, err = PutAssemblySQL("GRCh99", "")
	assert.Equal(t, ErrInvalidArgument, KindOf(err))
}
