// Package testutil provides testing utilities for slicefinder.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random categorical datasets and
// for enumerating slices exhaustively as ground truth.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	doms := rng.Domains(5, 4)            // 5 features, 2..4 values each
//	x := rng.CategoricalRows(300, doms)  // 1-based codes
//	e := rng.Errors(300, 0.6)            // 60% of rows carry an error
//	testutil.PlantError(x, e, 0, 1, 0.5) // rows with x[0] == 1 get +0.5
//
// # Exhaustive Enumeration (Ground Truth)
//
//	slices := testutil.BruteForceSlices(x, e, minSup, scoreFn)
package testutil
