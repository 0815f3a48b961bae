package main

/*
vcf-into-sqlite bulk-loads a VCF file into a GenomicSQLite database: one
row per record in the <prefix>variants table with the fixed fields parsed
into columns, the header's contig declarations in _gri_refseq, and a
Genomic Range Index on the variant coordinates.
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
	refSeqFasta  = flag.String("refseq-fasta", "", "Seed the reference catalog from this FASTA instead of the VCF contig headers")
	level        int
	quiet        bool
)

func init() {
	flag.IntVar(&level, "level", 0, "zstd compression level; 0 = default (6)")
	flag.IntVar(&level, "l", 0, "Shorthand for -level")
	flag.BoolVar(&quiet, "quiet", false, "Suppress progress logging")
	flag.BoolVar(&quiet, "q", false, "Shorthand for -quiet")
}

func vcfIntoSqliteUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] in.vcf[.gz] out.db\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Use - to read VCF from standard input.\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = vcfIntoSqliteUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Expected two positional arguments (in.vcf out.db), got %d; see -help", flag.NArg())
	}
	opts := loader.Options{
		TablePrefix:  *tablePrefix,
		NoGRI:        *noGRI,
		InnerPageKiB: *innerPageKiB,
		OuterPageKiB: *outerPageKiB,
		ZstdLevel:    level,
		Quiet:        quiet,
		RefSeqFasta:  *refSeqFasta,
	}
	if err := loader.VCFIntoSQLite(flag.Arg(1), flag.Arg(0), opts); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}
