/*Package gri implements the Genomic Range Index (GRI): a multi-level,
  integer-binned interval index stored entirely as ordinary SQLite objects
  (two generated columns plus one compound b-tree index), and the SQL
  generators which create it and query it.

  An indexed table is any table with three columns or expressions
  interpretable as (rid, beg, end): a reference-sequence ID and a half-open,
  zero-based coordinate interval [beg, end) with 0 <= beg <= end <= MaxPos+1.
  Every such interval is assigned to exactly one of nine levels; the bin
  width at level L is 16^(9-L), so level 0 has a single bin covering the
  whole 2^36 coordinate domain and level 8 bins are 16bp wide.  The interval
  lands on the finest level whose bin at beg also contains end-1.

  Overlap queries ("all rows whose interval overlaps [qbeg, qend) on rid
  qrid") are answered by a generated SELECT expression probing, for each
  populated level, one contiguous range of the (rid, _gri_lvl, _gri_beg)
  index.  See RangeRowIDsSQL.
*/
package gri
