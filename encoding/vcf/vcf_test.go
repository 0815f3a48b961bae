package vcf

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCF = `##fileformat=VCFv4.2
##contig=<ID=chr1,length=248956422,assembly=GRCh38>
##contig=<ID=chr2,length=242193529>
##INFO=<ID=END,Number=1,Type=Integer,Description="End position">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA12878
chr1	1001	rs1	A	G	29.5	PASS	DP=14	GT	0|1
chr1	2001	.	ACGT	A	.	.	DP=9	GT	1|1
chr2	5001	sv1	N	<DEL>	12	PASS	SVTYPE=DEL;END=8000	GT	0/1
`

func TestReadVCF(t *testing.T) {
	r, err := NewReader(strings.NewReader(testVCF))
	require.NoError(t, err)
	defer r.Close() // nolint: errcheck

	h := r.Header()
	assert.Equal(t, "VCFv4.2", h.FileFormat)
	require.Len(t, h.Contigs, 2)
	assert.Equal(t, Contig{Name: "chr1", Length: 248956422}, h.Contigs[0])
	assert.Equal(t, []string{"NA12878"}, h.Samples)

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "chr1", rec.Chrom)
	assert.Equal(t, int64(1000), rec.Beg)
	assert.Equal(t, int64(1001), rec.End)
	assert.Equal(t, "rs1", rec.ID)
	assert.Equal(t, []string{"G"}, rec.Alt)
	assert.True(t, rec.HasQual)
	assert.Equal(t, 29.5, rec.Qual)
	assert.Equal(t, []string{"GT", "0|1"}, rec.Genotypes)

	rec, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(2000), rec.Beg)
	assert.Equal(t, int64(2004), rec.End) // deletion spans len(REF)
	assert.False(t, rec.HasQual)

	rec, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(5000), rec.Beg)
	assert.Equal(t, int64(8000), rec.End) // INFO END wins for symbolic ALT

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReadVCFGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	defer r.Close() // nolint: errcheck
	assert.Len(t, r.Header().Contigs, 2)
	var n int
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 3, n)
}

func TestReadVCFMalformed(t *testing.T) {
	_, err := NewReader(strings.NewReader("##fileformat=VCFv4.2\n"))
	assert.Error(t, err, "missing #CHROM line")

	_, err = NewReader(strings.NewReader("not a vcf\n"))
	assert.Error(t, err)

	r, err := NewReader(strings.NewReader(
		"##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nchr1\tzero\t.\tA\tG\t.\t.\t.\n"))
	require.NoError(t, err)
	_, err = r.Read()
	assert.ErrorContains(t, err, "malformed POS")

	r, err = NewReader(strings.NewReader(
		"##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nchr1\t100\t.\tA\n"))
	require.NoError(t, err)
	_, err = r.Read()
	assert.ErrorContains(t, err, "columns")
}
