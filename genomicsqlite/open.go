package genomicsqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/mattn/go-sqlite3"
)

// Each Open registers a uniquely named driver instance so its ConnectHook
// can carry that open's Config: the hook runs on every connection the pool
// creates, keeping the per-connection PRAGMAs and registered SQL functions
// consistent across the pool.
var driverSeq int64

// Open opens (creating if necessary) a GenomicSQLite database with the
// given configuration; nil means DefaultConfig.  Every pooled connection
// gets the tuning PRAGMAs and the GenomicSQLite SQL functions.
func Open(path string, cfg *Config) (*sql.DB, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if _, err := VersionCheck(); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("genomicsqlite%d", atomic.AddInt64(&driverSeq, 1))
	sql.Register(name, &sqlite3.SQLiteDriver{ConnectHook: connectHook(c)})
	db, err := sql.Open(name, dsn(path, c))
	if err != nil {
		return nil, errors.E(err, "opening", path)
	}
	if c.UnsafeLoad || strings.Contains(path, ":memory:") {
		// Bulk load wants exactly one connection: the page cache stays hot
		// and the journaling PRAGMAs cannot fight a concurrent reader.  An
		// in-memory database requires one, since each pool connection
		// would otherwise get its own private database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close() // nolint: errcheck
		return nil, errors.E(err, "opening", path)
	}
	log.Debug.Printf("genomicsqlite: opened %s (inner_page_KiB=%d page_cache_MiB=%d unsafe_load=%v)",
		path, c.InnerPageKiB, c.PageCacheMiB, c.UnsafeLoad)
	return db, nil
}

// OpenJSON is Open with the configuration supplied as a JSON document
// merged over DefaultConfig, mirroring the configuration surface of the
// other GenomicSQLite language bindings.
func OpenJSON(path, configJSON string) (*sql.DB, error) {
	cfg, err := MergeConfigJSON(configJSON)
	if err != nil {
		return nil, err
	}
	return Open(path, &cfg)
}

// dsn builds the SQLite URI filename.  Compression- and web-VFS tunables
// travel as URI query parameters: SQLite core ignores parameters it does
// not recognize and an externally registered VFS reads them with
// sqlite3_uri_parameter.
func dsn(path string, c Config) string {
	q := url.Values{}
	q.Set("_busy_timeout", "30000")
	q.Set("outer_page_size", fmt.Sprintf("%d", c.OuterPageKiB*1024))
	q.Set("level", fmt.Sprintf("%d", c.ZstdLevel))
	q.Set("threads", fmt.Sprintf("%d", c.Threads))
	if c.ForcePrefetch {
		q.Set("force_prefetch", "1")
	}
	if c.Immutable {
		q.Set("mode", "ro")
		q.Set("immutable", "1")
	}
	if c.Web {
		q.Set("vfs", "web")
		q.Set("mode", "ro")
		q.Set("immutable", "1")
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + q.Encode()
}

func connectHook(c Config) func(*sqlite3.SQLiteConn) error {
	return func(conn *sqlite3.SQLiteConn) error {
		if err := registerFunctions(conn); err != nil {
			return err
		}
		return applyTuning(conn, c)
	}
}

func applyTuning(conn *sqlite3.SQLiteConn, c Config) error {
	threads := c.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	pragmas := []string{
		// page_size only takes effect if the database is still empty.
		fmt.Sprintf("PRAGMA page_size = %d", c.InnerPageKiB*1024),
		fmt.Sprintf("PRAGMA cache_size = -%d", c.PageCacheMiB*1024),
		fmt.Sprintf("PRAGMA threads = %d", threads),
	}
	if c.UnsafeLoad {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = OFF",
			"PRAGMA synchronous = OFF",
			"PRAGMA defer_foreign_keys = ON")
	} else if !c.Immutable && !c.Web {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA foreign_keys = ON")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p, nil); err != nil {
			return errors.E(err, p)
		}
	}
	return nil
}
