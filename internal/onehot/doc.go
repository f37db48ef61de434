// Package onehot encodes an integer-coded feature matrix into one-hot
// indicator columns.
//
// Feature j with domain size fdom[j] owns the column range
// [offsetBegin[j], offsetEnd[j]) of the encoded width n2 = Σ fdom[j].
// The indicator matrix is stored column-wise: every column keeps a Roaring
// bitmap of the row ids whose value selects it. Each row therefore appears in
// exactly one column per feature range.
//
// A conjunction of predicates (a slice) is evaluated by intersecting the
// bitmaps of its columns.
package onehot
