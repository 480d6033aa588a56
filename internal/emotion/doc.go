// Package emotion defines the core data model shared across the pipeline.
//
// It owns the fixed seven-label emotion set, probability distributions over
// that set, raw per-frame inference results, and the smoothed consumer-facing
// state. Values of these types are immutable once constructed; SmoothedState
// in particular is shared read-only between every fan-out consumer.
//
// Keep this package dependency-free so every other internal package can import
// it without cycles.
package emotion
