// Package degraded supplies synthetic inference results when the external
// detector is unreachable, keeping the pipeline and every consumer running.
//
// Generated results satisfy the same contract as real ones; consumers
// distinguish them only through the status flag carried on the delivered
// state, never by data shape.
package degraded
