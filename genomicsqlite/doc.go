/*Package genomicsqlite opens SQLite databases tuned for genomic-data
  access patterns and registers the GenomicSQLite SQL surface on every
  connection: the genomic_range_bin and genomicsqlite_version scalar
  functions, SQL-generator functions mirroring the package gri API, and the
  eponymous genomic_range_rowids table-valued function.

  The tuning policy targets bulk load followed by read-heavy querying:
  large pages, a generous page cache, and an opt-in unsafe_load mode which
  trades crash safety for ingest throughput.  Compression and web access
  are the business of externally registered VFS layers; their parameters
  (outer page size, zstd level, background threads) are passed through in
  the database URI for such a VFS to consume.
*/
package genomicsqlite
