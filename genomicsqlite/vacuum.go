package genomicsqlite

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// VacuumIntoSQL returns a script which materializes a defragmented,
// recompressed copy of the open database at destFile, applying cfg's page
// sizing to the copy.  nil cfg means DefaultConfig.
func VacuumIntoSQL(destFile string, cfg *Config) (string, error) {
	if destFile == "" {
		return "", errors.E("destination filename must be non-empty")
	}
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := c.validate(); err != nil {
		return "", err
	}
	quoted := "'" + strings.ReplaceAll(destFile, "'", "''") + "'"
	return fmt.Sprintf("PRAGMA page_size = %d;\nPRAGMA auto_vacuum = NONE;\nVACUUM INTO %s",
		c.InnerPageKiB*1024, quoted), nil
}
