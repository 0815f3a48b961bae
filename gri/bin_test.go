package gri

import (
	"math/rand"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinWidth(t *testing.T) {
	expect.EQ(t, BinWidth(0), int64(1)<<36)
	expect.EQ(t, BinWidth(0), MaxPos+1)
	expect.EQ(t, BinWidth(MaxLevel), int64(16))
	for lvl := 1; lvl <= MaxLevel; lvl++ {
		expect.EQ(t, BinWidth(lvl-1), 16*BinWidth(lvl))
	}
}

func TestLevelScenarios(t *testing.T) {
	tests := []struct {
		beg, end int64
		want     int
	}{
		{1000, 2000, 6},        // 1000>>12 == 1999>>12 == 0; differs at level 7
		{0, 1, 8},              // point interval
		{0, MaxPos + 1, 0},     // full-genome interval
		{0, 16, 8},             // exactly one finest bin
		{15, 17, 7},            // straddles two finest bins
		{1000, 1000, 8},        // degenerate end == beg: point of width 1
		{MaxPos, MaxPos + 1, 8},
	}
	for _, tt := range tests {
		got, err := Level(tt.beg, tt.end)
		require.NoError(t, err, "Level(%d,%d)", tt.beg, tt.end)
		assert.Equal(t, tt.want, got, "Level(%d,%d)", tt.beg, tt.end)
	}
}

func TestLevelOutOfRange(t *testing.T) {
	for _, tt := range [][2]int64{{-1, 5}, {10, 5}, {0, MaxPos + 2}} {
		_, err := Level(tt[0], tt[1])
		require.Error(t, err, "Level(%d,%d)", tt[0], tt[1])
		assert.Equal(t, ErrOutOfRange, KindOf(err))
	}
}

func TestLevelCapped(t *testing.T) {
	lvl, err := LevelCapped(1000, 1002, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, lvl)
	lvl, err = LevelCapped(1000, 1002, -1)
	require.NoError(t, err)
	assert.Equal(t, 8, lvl)
	_, err = LevelCapped(0, 1, Levels)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidArgument, KindOf(err))
}

// The defining invariants: the interval's endpoints share a bin at its
// level and every coarser level, and split at every finer level.
func TestLevelInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		beg := rng.Int63n(MaxPos + 1)
		width := int64(1) << uint(rng.Intn(37))
		width += rng.Int63n(width)
		end := beg + width
		if end > MaxPos+1 {
			end = MaxPos + 1
		}
		lvl, err := Level(beg, end)
		require.NoError(t, err)
		last := end - 1
		if last < beg {
			last = beg
		}
		require.Equal(t, Bin(lvl, beg), Bin(lvl, last), "level %d of [%d,%d)", lvl, beg, end)
		for l := 0; l < lvl; l++ {
			require.Equal(t, Bin(l, beg), Bin(l, last), "coarser level %d of [%d,%d)", l, beg, end)
		}
		for l := lvl + 1; l <= MaxLevel; l++ {
			require.NotEqual(t, Bin(l, beg), Bin(l, last), "finer level %d of [%d,%d)", l, beg, end)
		}
	}
}
