// Package eval computes exact slice statistics.
//
// A record matches a slice iff it is present in the posting list of every
// slice column, so matching rows are the intersection of those bitmaps.
// Size, total error, max error and score follow from one pass over the
// intersection.
//
// Two scheduling modes are supported:
//
//   - DataParallel evaluates candidates one after another and lets the bitmap
//     library intersect each candidate's columns in parallel.
//   - TaskParallel splits the batch into fixed-size blocks evaluated by a
//     bounded group of goroutines. Blocks are disjoint, so every worker owns
//     its candidates exclusively.
//
// Results do not depend on the mode, block size or worker count.
package eval
