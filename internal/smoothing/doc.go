// Package smoothing maintains the bounded recent-history window that turns
// noisy per-frame distributions into a stable current state.
//
// The engine computes the arithmetic mean of the distributions currently in
// the window with uniform weighting. Recency-weighted smoothing was considered
// and deliberately not adopted; the window size is the tunable instead.
//
// The engine is not safe for concurrent use. Exactly one owner (the pipeline)
// mutates it; reset and observe calls are serialized by that owner.
package smoothing
