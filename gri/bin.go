package gri

// GRI geometry.  The branching factor is 16, so the bin width at level L is
// 16^(Levels-L) and the single level-0 bin spans the full 2^36 coordinate
// domain.
const (
	// MaxPos is the largest representable position (36-bit domain).
	MaxPos int64 = 1<<36 - 1
	// Levels is the number of index levels.
	Levels = 9
	// MaxLevel is the finest level (16bp bins).
	MaxLevel = Levels - 1

	binShift = 4 // log2 of the branching factor
)

// BinWidth returns the bin width at the given level: 16^(Levels-level).
// BinWidth(0) == 2^36 == MaxPos+1, BinWidth(MaxLevel) == 16.
func BinWidth(level int) int64 {
	return 1 << uint(binShift*(Levels-level))
}

// Bin returns the bin index of position pos at the given level.
func Bin(level int, pos int64) int64 {
	return pos >> uint(binShift*(Levels-level))
}

// Level returns the unique level of the half-open interval [beg, end): the
// finest level whose bin at beg also contains end-1.  A degenerate end ==
// beg is treated as a point interval of width 1.  Fails with ErrOutOfRange
// when beg < 0, end < beg, or end > MaxPos+1.
func Level(beg, end int64) (int, error) {
	return LevelCapped(beg, end, MaxLevel)
}

// LevelCapped is Level with the finest considered level capped at maxLevel;
// intervals that would land deeper are assigned maxLevel's ancestor bin.
// maxLevel == -1 means MaxLevel.
func LevelCapped(beg, end int64, maxLevel int) (int, error) {
	if maxLevel < 0 {
		maxLevel = MaxLevel
	}
	if maxLevel > MaxLevel {
		return 0, errorf(ErrInvalidArgument, "level %d out of range [0,%d]", maxLevel, MaxLevel)
	}
	if beg < 0 || end < beg || end > MaxPos+1 {
		return 0, errorf(ErrOutOfRange, "interval [%d,%d) outside the [0,%d] coordinate domain", beg, end, MaxPos)
	}
	last := end - 1
	if last < beg {
		last = beg
	}
	for lvl := maxLevel; lvl > 0; lvl-- {
		sh := uint(binShift * (Levels - lvl))
		if beg>>sh == last>>sh {
			return lvl, nil
		}
	}
	// Level 0's single bin contains every in-domain position.
	if Bin(0, beg) != Bin(0, last) {
		return 0, errorf(ErrInternal, "level-0 bin does not contain [%d,%d)", beg, end)
	}
	return 0, nil
}
