// Package aggregate maintains per-consumer session aggregates.
//
// Each registered view owns its own counters and applies its rule to every
// delivered state in delivery order. Views never share mutable data, so one
// consumer's aggregation cannot skew another's. Aggregates live only for the
// current session; Reset zeroes everything including previous-label memory.
package aggregate
