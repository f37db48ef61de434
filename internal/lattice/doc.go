// Package lattice enumerates slice candidates level by level.
//
// A slice is a sorted set of one-hot columns with at most one column per
// feature. Level-1 slices come from Basic; level-L candidates come from Join,
// which pairs surviving level-(L-1) slices sharing L-2 columns and prunes
// the result by propagated size/error bounds, by the score upper bound, and
// by requiring every (L-1)-subset to have survived.
package lattice
