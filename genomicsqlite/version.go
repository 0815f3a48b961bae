package genomicsqlite

import (
	"github.com/grailbio/base/errors"
	"github.com/mattn/go-sqlite3"
)

// Version of the GenomicSQLite extension surface implemented here.
const Version = "0.10.0"

// minSQLiteVersionNumber is SQLite 3.31.0, the first release with generated
// columns, which the GRI schema requires.
const minSQLiteVersionNumber = 3031000

// VersionCheck returns Version after verifying the linked SQLite library is
// new enough to support the GRI schema.
func VersionCheck() (string, error) {
	libVersion, libVersionNumber, _ := sqlite3.Version()
	if libVersionNumber < minSQLiteVersionNumber {
		return "", errors.E("GenomicSQLite requires SQLite >= 3.31.0; linked library is", libVersion)
	}
	return Version, nil
}
