// Package slicefinder finds the data slices on which a model performs worst.
//
// A slice is a conjunction of feature == value predicates over an
// integer-coded feature matrix X (m × n, values ≥ 1). Given a per-record
// error vector e, slicefinder returns the top-K slices that are both large
// and carry disproportionately high error, scored as
//
//	score = α·((err/size)/avgErr − 1) − (1−α)·(m/size − 1)
//
// The search walks the slice lattice level by level. Level 1 holds the
// single-predicate slices; level L is generated by joining level L−1 slices
// that share L−2 predicates. Candidates are pruned by minimum support and by
// a score upper bound against the current K-th best score, so only a small
// part of the lattice is ever evaluated.
//
// # Quick Start
//
//	ds, _ := dataset.FromSlices(x, e)
//	res, err := slicefinder.Find(ctx, ds,
//	    slicefinder.WithK(4),
//	    slicefinder.WithMinSupport(32),
//	)
//	for i, s := range res.TopK {
//	    fmt.Println(s, res.Stats[i].Score)
//	}
//
// Each TopK row has one entry per feature: 0 where the slice does not
// constrain the feature, else the 1-based value it requires.
//
// # Evaluation Modes
//
// Candidates are evaluated by intersecting per-column row bitmaps.
// Task-parallel mode (default) splits the candidates of a level into blocks
// evaluated concurrently; data-parallel mode evaluates candidates one at a
// time with parallel bitmap intersections. Both produce identical results.
//
// # Loading Data
//
// The dataset package reads matrices from any blobstore.BlobStore (local
// files, memory, S3, MinIO) in CSV, sparse IJV or a compressed binary
// format. The cmd/slicefinder command wraps both packages.
package slicefinder
