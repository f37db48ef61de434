// Package score computes slice quality scores and their upper bounds.
//
// A slice score combines excess relative error and excess relative size:
//
//	score = alpha * ((err/size)/avgErr - 1) - (1-alpha) * (m/size - 1)
//
// Both functions are pure. Empty slices (size == 0) and undefined
// results (NaN) score -Inf.
package score
