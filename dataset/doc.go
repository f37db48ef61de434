// Package dataset holds the slice finder input: an integer-coded feature
// matrix X (m × n, values ≥ 1) and a per-record error vector e (m × 1).
//
// Matrices are read from and written to a blobstore.BlobStore in one of
// three formats, chosen from the blob name's extension or an option:
//
//   - csv: comma separated values, an optional non-numeric header row is skipped
//   - ijv: sparse text triplets "row col value" (1-based), optionally
//     preceded by a MatrixMarket banner and size line (.ijv, .mtx)
//   - binary: a checksummed little-endian float64 payload, optionally
//     compressed with LZ4 or Zstandard (.sfm)
//
// Example:
//
//	store := blobstore.NewLocalStore("data")
//	ds, err := dataset.Load(ctx, store, "X.csv", "e.csv")
package dataset
