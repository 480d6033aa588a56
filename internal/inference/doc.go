// Package inference talks to the external emotion detector service.
//
// The client performs exactly one network attempt per Detect call and never
// retries internally; retry policy belongs to the admission loop via its next
// tick. Failures are classified into the three sentinel errors (unreachable,
// timeout, invalid response) so the pipeline can convert them into degraded
// or offline status instead of surfacing them as fatal.
package inference
