package genomicsqlite

import (
	"database/sql"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlin/GenomicSQLite-sub001/gri"
)

func openTestDB(t *testing.T, path string, cfg *Config) *sql.DB {
	db, err := Open(path, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) // nolint: errcheck
	return db
}

func TestOpenAppliesTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	cfg := DefaultConfig()
	cfg.UnsafeLoad = true
	cfg.InnerPageKiB = 4
	db := openTestDB(t, path, &cfg)

	var pageSize int64
	require.NoError(t, db.QueryRow("PRAGMA page_size").Scan(&pageSize))
	assert.Equal(t, int64(4096), pageSize)
	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "off", journalMode)
	var sync int64
	require.NoError(t, db.QueryRow("PRAGMA synchronous").Scan(&sync))
	assert.Equal(t, int64(0), sync)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InnerPageKiB = 5
	_, err := Open(":memory:", &cfg)
	assert.Error(t, err)
}

func TestSQLFunctions(t *testing.T) {
	db := openTestDB(t, ":memory:", nil)

	var version string
	require.NoError(t, db.QueryRow("SELECT genomicsqlite_version()").Scan(&version))
	assert.Equal(t, Version, version)

	var cfgJSON string
	require.NoError(t, db.QueryRow("SELECT genomicsqlite_default_config_json()").Scan(&cfgJSON))
	assert.Equal(t, DefaultConfigJSON(), cfgJSON)

	var lvl int64
	require.NoError(t, db.QueryRow("SELECT genomic_range_bin(1000, 2000)").Scan(&lvl))
	assert.Equal(t, int64(6), lvl)
	require.NoError(t, db.QueryRow("SELECT genomic_range_bin(1000, 1002, 6)").Scan(&lvl))
	assert.Equal(t, int64(6), lvl)
	err := db.QueryRow("SELECT genomic_range_bin(-1, 5)").Scan(&lvl)
	assert.Error(t, err)

	var script string
	require.NoError(t, db.QueryRow("SELECT create_genomic_range_index_sql('reads','rid','beg','end',-1)").Scan(&script))
	assert.Contains(t, script, `CREATE INDEX "reads_gri"`)

	require.NoError(t, db.QueryRow("SELECT put_genomic_reference_sequence_sql('chr1',248956422,'GRCh38_no_alt_analysis_set','','',-1,'')").Scan(&script))
	assert.Contains(t, script, "_gri_refseq")
	require.NoError(t, db.QueryRow("SELECT put_genomic_reference_assembly_sql('hs37d5','')").Scan(&script))
	assert.Contains(t, script, "'MT'")

	require.NoError(t, db.QueryRow("SELECT genomicsqlite_vacuum_into_sql('copy.db', '{\"inner_page_KiB\": 64}')").Scan(&script))
	assert.Contains(t, script, "PRAGMA page_size = 65536")
	assert.Contains(t, script, "VACUUM INTO 'copy.db'")
}

func TestOpenJSON(t *testing.T) {
	db, err := OpenJSON(":memory:", `{"page_cache_MiB": 64}`)
	require.NoError(t, err)
	defer db.Close() // nolint: errcheck
	var cacheSize int64
	require.NoError(t, db.QueryRow("PRAGMA cache_size").Scan(&cacheSize))
	assert.Equal(t, int64(-65536), cacheSize)

	_, err = OpenJSON(":memory:", `{"bogus": true}`)
	assert.Error(t, err)
}

func TestRangeRowidsSQLFunction(t *testing.T) {
	db := openTestDB(t, ":memory:", nil)
	_, err := db.Exec("CREATE TABLE reads (rid INTEGER, beg INTEGER, end INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO reads(rid,beg,end) VALUES(0,1000,2000),(0,100,600),(0,10,20)")
	require.NoError(t, err)
	require.NoError(t, gri.CreateRangeIndex(db, "reads", "rid", "beg", "end", -1))

	// The SQL function compiles on the invoking connection...
	var query string
	require.NoError(t, db.QueryRow("SELECT genomic_range_rowids_sql('reads','','','')").Scan(&query))
	assert.Contains(t, query, "_gri_lvl = 6")

	// ...and its output runs as-is with ?1/?2/?3 bindings.
	rows, err := db.Query("SELECT * FROM "+query, 0, 500, 1500)
	require.NoError(t, err)
	defer rows.Close() // nolint: errcheck
	var got []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		got = append(got, id)
	}
	require.NoError(t, rows.Err())
	assert.ElementsMatch(t, []int64{1, 2}, got)

	err = db.QueryRow("SELECT genomic_range_rowids_sql('nonexistent','','','')").Scan(&query)
	assert.Error(t, err)
}

func TestRangeRowidsTableValued(t *testing.T) {
	db := openTestDB(t, ":memory:", nil)
	_, err := db.Exec("CREATE TABLE reads (rid INTEGER, beg INTEGER, end INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO reads(rid,beg,end) VALUES(0,1000,2000),(0,100,600),(0,10,20),(1,100,600)")
	require.NoError(t, err)
	require.NoError(t, gri.CreateRangeIndex(db, "reads", "rid", "beg", "end", -1))

	rows, err := db.Query("SELECT rowid_result FROM genomic_range_rowids('reads', ?, ?, ?) ORDER BY rowid_result", 0, 500, 1500)
	require.NoError(t, err)
	defer rows.Close() // nolint: errcheck
	var got []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		got = append(got, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1, 2}, got)

	// Joining against the indexed table itself.
	var n int64
	require.NoError(t, db.QueryRow(
		"SELECT count(*) FROM reads WHERE _rowid_ IN (SELECT rowid_result FROM genomic_range_rowids('reads', 0, 0, 3000))").Scan(&n))
	assert.Equal(t, int64(3), n)
}

// Bulk load with unsafe_load, create the GRI, then reopen read-only: the
// query results reproduce exactly.
func TestBulkLoadReopenReadOnly(t *testing.T) {
	const nRows = 20000
	path := filepath.Join(t.TempDir(), "bulk.db")
	cfg := DefaultConfig()
	cfg.UnsafeLoad = true
	db := openTestDB(t, path, &cfg)

	_, err := db.Exec("CREATE TABLE reads (rid INTEGER, beg INTEGER, end INTEGER)")
	require.NoError(t, err)
	tx, err := db.Begin()
	require.NoError(t, err)
	stmt, err := tx.Prepare("INSERT INTO reads(rid,beg,end) VALUES(?,?,?)")
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < nRows; i++ {
		beg := rng.Int63n(1 << 30)
		_, err := stmt.Exec(rng.Intn(2), beg, beg+1+rng.Int63n(1<<16))
		require.NoError(t, err)
	}
	require.NoError(t, stmt.Close())
	require.NoError(t, tx.Commit())
	require.NoError(t, gri.CreateRangeIndex(db, "reads", "rid", "beg", "end", -1))

	query, err := gri.RangeRowIDsSQL(db, "reads", "", "", "")
	require.NoError(t, err)
	count := func(db *sql.DB, qrid, qbeg, qend int64) int64 {
		var n int64
		require.NoError(t, db.QueryRow("SELECT count(*) FROM "+query, qrid, qbeg, qend).Scan(&n))
		return n
	}
	var wants []int64
	for q := 0; q < 20; q++ {
		qbeg := rng.Int63n(1 << 30)
		wants = append(wants, count(db, int64(q%2), qbeg, qbeg+1<<20))
	}
	require.NoError(t, db.Close())

	roCfg := DefaultConfig()
	roCfg.Immutable = true
	ro := openTestDB(t, path, &roCfg)
	rng = rand.New(rand.NewSource(3))
	for i := 0; i < nRows; i++ {
		rng.Intn(2)
		rng.Int63n(1 << 30)
		rng.Int63n(1 << 16)
	}
	for q := 0; q < 20; q++ {
		qbeg := rng.Int63n(1 << 30)
		assert.Equal(t, wants[q], count(ro, int64(q%2), qbeg, qbeg+1<<20))
	}
}
