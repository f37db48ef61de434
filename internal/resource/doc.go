// Package resource governs the memory and IO a slice search may use.
//
//   - Memory: candidate sets reserve an estimate of their footprint before a
//     level is evaluated (non-blocking, fail-fast).
//   - IO: a token bucket throttles dataset reads from blob stores.
//
// # Memory
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//
//	n := resource.CandidateBytes(len(cands), level)
//	if err := rc.AcquireMemory(n); err != nil {
//	    return err // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(n)
//
// # IO
//
//	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 64 << 20})
//	r := resource.NewRateLimitedReader(ctx, blobReader, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller; they become no-ops.
package resource
