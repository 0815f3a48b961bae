/*Package fasta contains a sequential FASTA scanner used to bootstrap the
  reference-sequence catalog from an assembly file.  Briefly, FASTA files
  consist of a number of named sequences that may be interrupted by
  newlines:

  >chr7
  ACGTAC
  GAGGAC
  >chr8
  ACGT

  Sequence names are the stretch of characters excluding spaces immediately
  after '>'; any text after a space is ignored.  The scanner records each
  sequence's name, length, and MD5 digest (computed over the uppercased
  sequence with whitespace removed, the convention used by refget and the
  CRAM specification) without retaining the sequence bytes.
*/
package fasta

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// SeqInfo summarizes one FASTA sequence.
type SeqInfo struct {
	Name   string
	Length int64
	// MD5 is the lowercase hex digest of the uppercased sequence.
	MD5 string
}

// Scan reads FASTA text from r (gzip-compressed input is unwrapped
// transparently) and returns a summary of every sequence, in file order.
func Scan(r io.Reader) ([]SeqInfo, error) {
	buf := bufio.NewReaderSize(r, 1<<20)
	if magic, err := buf.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(buf)
		if err != nil {
			return nil, errors.Wrap(err, "opening gzip stream")
		}
		defer gz.Close() // nolint: errcheck
		buf = bufio.NewReaderSize(gz, 1<<20)
	}
	var (
		seqs   []SeqInfo
		cur    *SeqInfo
		digest hash.Hash
		upper  [256]byte
	)
	for i := range upper {
		upper[i] = byte(i)
	}
	for c := byte('a'); c <= 'z'; c++ {
		upper[c] = c - 'a' + 'A'
	}
	flush := func() {
		if cur != nil {
			cur.MD5 = hex.EncodeToString(digest.Sum(nil))
			seqs = append(seqs, *cur)
		}
	}
	lineno := 0
	for {
		line, err := buf.ReadBytes('\n')
		if len(line) == 0 && err == io.EOF {
			break
		}
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "reading FASTA")
		}
		lineno++
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			name := string(line[1:])
			if sp := strings.IndexByte(name, ' '); sp >= 0 {
				name = name[:sp]
			}
			if name == "" {
				return nil, errors.Errorf("line %d: sequence with empty name", lineno)
			}
			cur = &SeqInfo{Name: name}
			digest = md5.New()
			continue
		}
		if cur == nil {
			return nil, errors.Errorf("line %d: sequence data before any '>' header", lineno)
		}
		n := 0
		for _, c := range line {
			if c != ' ' && c != '\t' {
				line[n] = upper[c]
				n++
			}
		}
		line = line[:n]
		digest.Write(line) // nolint: errcheck
		cur.Length += int64(len(line))
	}
	flush()
	if len(seqs) == 0 {
		return nil, errors.New("empty FASTA file")
	}
	return seqs, nil
}
