// Package fanout delivers each smoothed state to every registered consumer
// independently.
//
// Each subscriber owns a goroutine draining an unbounded FIFO, so a slow or
// failing handler never delays delivery to others or blocks the publisher.
// Per-subscriber delivery order always matches publish order, and states are
// never dropped once accepted by the bus; that is the deliberate contrast to
// frame admission, which drops freely. Handler panics are contained and
// logged, never propagated.
package fanout
