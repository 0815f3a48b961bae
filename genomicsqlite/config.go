package genomicsqlite

import (
	"bytes"
	"encoding/json"

	"github.com/grailbio/base/errors"
)

// Config holds the tunables recognized by Open, with JSON keys matching the
// configuration documents accepted by the other GenomicSQLite language
// bindings.
type Config struct {
	// Threads is the number of background threads the compression VFS and
	// SQLite sorter may use; 0 means one per CPU.
	Threads int `json:"threads"`
	// InnerPageKiB is the logical page size of the database (1..64, power
	// of two).
	InnerPageKiB int `json:"inner_page_KiB"`
	// OuterPageKiB is the physical page size of the compressed container.
	OuterPageKiB int `json:"outer_page_KiB"`
	// ZstdLevel is the compression level, -7..22.
	ZstdLevel int `json:"zstd_level"`
	// UnsafeLoad disables journaling and synchronous writes, and defers
	// foreign-key checks, for bulk loading.  A crash mid-load corrupts the
	// database.
	UnsafeLoad bool `json:"unsafe_load"`
	// PageCacheMiB is the page cache budget.
	PageCacheMiB int `json:"page_cache_MiB"`
	// Immutable opens strictly read-only without locking.
	Immutable bool `json:"immutable"`
	// Web opens via the URL-based read-only VFS (which must be registered
	// in the process).
	Web bool `json:"web"`
	// ForcePrefetch forces read-ahead on sequential scans (consumed by the
	// web VFS).
	ForcePrefetch bool `json:"force_prefetch"`
}

// DefaultConfig targets bulk-load-then-query workloads.
func DefaultConfig() Config {
	return Config{
		Threads:      0,
		InnerPageKiB: 16,
		OuterPageKiB: 32,
		ZstdLevel:    6,
		PageCacheMiB: 1024,
	}
}

// DefaultConfigJSON returns DefaultConfig as a JSON document.
func DefaultConfigJSON() string {
	buf, err := json.Marshal(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return string(buf)
}

// MergeConfigJSON overlays the given JSON document onto DefaultConfig.
// Keys absent from the document keep their defaults; unknown keys are an
// error.  An empty document yields DefaultConfig.
func MergeConfigJSON(doc string) (Config, error) {
	cfg := DefaultConfig()
	if doc == "" || doc == "{}" {
		return cfg, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.E(err, "parsing configuration JSON")
	}
	return cfg, cfg.validate()
}

func validPageKiB(k int) bool {
	switch k {
	case 1, 2, 4, 8, 16, 32, 64:
		return true
	}
	return false
}

func (c Config) validate() error {
	if !validPageKiB(c.InnerPageKiB) {
		return errors.E("inner_page_KiB must be a power of two in 1..64, got", c.InnerPageKiB)
	}
	if !validPageKiB(c.OuterPageKiB) {
		return errors.E("outer_page_KiB must be a power of two in 1..64, got", c.OuterPageKiB)
	}
	if c.ZstdLevel < -7 || c.ZstdLevel > 22 {
		return errors.E("zstd_level must be in -7..22, got", c.ZstdLevel)
	}
	if c.Threads < 0 {
		return errors.E("threads must be nonnegative, got", c.Threads)
	}
	if c.PageCacheMiB < 0 {
		return errors.E("page_cache_MiB must be nonnegative, got", c.PageCacheMiB)
	}
	return nil
}
