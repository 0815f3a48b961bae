package main

/*
sam-into-sqlite bulk-loads a SAM or BAM file into a GenomicSQLite database:
one row per read in the <prefix>reads table, the header's reference
dictionary in _gri_refseq, and a Genomic Range Index on the read
coordinates.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/mlin/GenomicSQLite-sub001/loader"
)

var (
	tablePrefix  = flag.String("table-prefix", "", "Prefix for the created table names")
	noGRI        = flag.Bool("no-gri", false, "Skip genomic range indexing after the load")
	innerPageKiB = flag.Int("inner-page-KiB", 0, "Logical database page size in KiB; 0 = default (16)")
	outerPageKiB = flag.Int("outer-page-KiB", 0, "Compressed container page size in KiB; 0 = default (32)")
	level        int
	quiet        bool
)

func init() {
	flag.IntVar(&level, "level", 0, "zstd compression level; 0 = default (6)")
	flag.IntVar(&level, "l", 0, "Shorthand for -level")
	flag.BoolVar(&quiet, "quiet", false, "Suppress progress logging")
	flag.BoolVar(&quiet, "q", false, "Shorthand for -quiet")
}

func samIntoSqliteUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] in.sam|in.bam out.db\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Use - to read SAM from standard input.\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = samIntoSqliteUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Expected two positional arguments (in.sam out.db), got %d; see -help", flag.NArg())
	}
	opts := loader.Options{
		TablePrefix:  *tablePrefix,
		NoGRI:        *noGRI,
		InnerPageKiB: *innerPageKiB,
		OuterPageKiB: *outerPageKiB,
		ZstdLevel:    level,
		Quiet:        quiet,
	}
	if err := loader.SAMIntoSQLite(flag.Arg(1), flag.Arg(0), opts); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}
