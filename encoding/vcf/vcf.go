/*Package vcf contains a streaming parser for VCF-formatted variant call
  data, covering what the SQLite loaders need: header metadata (including
  the contig declarations used to bootstrap the reference-sequence
  catalog), and per-record fixed fields with the interval [beg, end)
  spanned on the reference.  Gzip and BGZF inputs are decompressed
  transparently.
*/
package vcf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Contig is one ##contig header declaration.
type Contig struct {
	Name   string
	Length int64 // -1 if the declaration omits length
}

// Header holds the parsed VCF header.
type Header struct {
	FileFormat string
	Contigs    []Contig
	// Samples are the genotype column names from the #CHROM line, in
	// order.
	Samples []string
	// MetaLines are the raw ## lines, in order, without the ## prefix.
	MetaLines []string
}

// Record is the fixed portion of one VCF data line plus the raw genotype
// columns.  Beg/End are the zero-based half-open reference interval the
// record spans: [POS-1, POS-1+len(REF)), except that an INFO END key, when
// present, supplies End for any record.
type Record struct {
	Chrom    string
	Beg      int64
	End      int64
	ID       string
	Ref      string
	Alt      []string
	Qual     float64
	HasQual  bool
	Filter   string
	Info     string
	// Genotypes holds the FORMAT column followed by one column per
	// sample, raw; empty for sites-only VCF.
	Genotypes []string
	// Line is the unmodified data line.
	Line string
}

// Reader streams records from one VCF.
type Reader struct {
	buf    *bufio.Reader
	gz     *gzip.Reader
	header *Header
	lineno int64
}

const maxLineSize = 64 << 20

// NewReader prepares to read VCF text from r, sniffing and unwrapping gzip
// framing (which includes BGZF), and parses the header.
func NewReader(r io.Reader) (*Reader, error) {
	buf := bufio.NewReaderSize(r, 1<<20)
	magic, err := buf.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "reading VCF")
	}
	rd := &Reader{buf: buf}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(buf)
		if err != nil {
			return nil, errors.Wrap(err, "opening gzip stream")
		}
		rd.gz = gz
		rd.buf = bufio.NewReaderSize(gz, 1<<20)
	}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

// Header returns the parsed header.
func (r *Reader) Header() *Header { return r.header }

func (r *Reader) readLine() (string, error) {
	line, err := r.buf.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	r.lineno++
	if len(line) > maxLineSize {
		return "", errors.Errorf("line %d longer than %d bytes", r.lineno, maxLineSize)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Reader) readHeader() error {
	h := &Header{}
	for {
		line, err := r.readLine()
		if err == io.EOF {
			return errors.New("VCF ended before the #CHROM header line")
		}
		if err != nil {
			return errors.Wrap(err, "reading VCF header")
		}
		switch {
		case strings.HasPrefix(line, "##"):
			meta := line[2:]
			h.MetaLines = append(h.MetaLines, meta)
			if strings.HasPrefix(meta, "fileformat=") {
				h.FileFormat = meta[len("fileformat="):]
			} else if strings.HasPrefix(meta, "contig=<") {
				contig, err := parseContig(meta)
				if err != nil {
					return errors.Wrapf(err, "line %d", r.lineno)
				}
				h.Contigs = append(h.Contigs, contig)
			}
		case strings.HasPrefix(line, "#CHROM\t") || line == "#CHROM":
			fields := strings.Split(line, "\t")
			if len(fields) < 8 {
				return errors.Errorf("line %d: malformed #CHROM line with %d columns", r.lineno, len(fields))
			}
			if len(fields) > 9 {
				h.Samples = fields[9:]
			}
			r.header = h
			return nil
		default:
			return errors.Errorf("line %d: expected header line, got %q", r.lineno, line)
		}
	}
}

func parseContig(meta string) (Contig, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(meta, "contig=<"), ">")
	contig := Contig{Length: -1}
	for _, kv := range strings.Split(body, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		key, val := kv[:eq], kv[eq+1:]
		switch key {
		case "ID":
			contig.Name = val
		case "length":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return contig, errors.Errorf("malformed contig length %q", val)
			}
			contig.Length = n
		}
	}
	if contig.Name == "" {
		return contig, errors.New("contig declaration without ID")
	}
	return contig, nil
}

// Read returns the next record, io.EOF at end of input, or a descriptive
// error on malformed input.  The returned Record is freshly allocated.
func (r *Reader) Read() (*Record, error) {
	var line string
	for {
		var err error
		line, err = r.readLine()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading VCF")
		}
		if line != "" {
			break
		}
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, errors.Errorf("line %d: %d columns (8 required)", r.lineno, len(fields))
	}
	rec := &Record{
		Line:   line,
		Chrom:  fields[0],
		ID:     fields[2],
		Ref:    fields[3],
		Filter: fields[6],
		Info:   fields[7],
	}
	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, errors.Errorf("line %d: malformed POS %q", r.lineno, fields[1])
	}
	rec.Beg = pos - 1
	if fields[4] != "." && fields[4] != "" {
		rec.Alt = strings.Split(fields[4], ",")
	}
	if fields[5] != "." && fields[5] != "" {
		qual, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, errors.Errorf("line %d: malformed QUAL %q", r.lineno, fields[5])
		}
		rec.Qual, rec.HasQual = qual, true
	}
	rec.End = rec.Beg + int64(len(rec.Ref))
	if end, ok := infoEnd(rec.Info); ok {
		if end < rec.Beg {
			return nil, errors.Errorf("line %d: INFO END %d precedes POS", r.lineno, end)
		}
		rec.End = end
	}
	if len(fields) > 8 {
		rec.Genotypes = fields[8:]
	}
	return rec, nil
}

// infoEnd extracts the INFO END key (1-based inclusive, hence equal to the
// half-open interval end).
func infoEnd(info string) (int64, bool) {
	for _, kv := range strings.Split(info, ";") {
		if strings.HasPrefix(kv, "END=") {
			n, err := strconv.ParseInt(kv[len("END="):], 10, 64)
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

// Close releases the decompressor, if any.  It does not close the
// underlying reader.
func (r *Reader) Close() error {
	if r.gz != nil {
		return r.gz.Close()
	}
	return nil
}
