// Package pipeline runs the live emotion loop: admission ticks capture a
// frame, at most one inference call is outstanding at any time, and each
// result is quality-assessed, smoothed and published to the fan-out bus.
//
// Backpressure is latest-wins at the entry point only. Ticks that arrive
// while a call is in flight are dropped silently; once a frame is accepted
// its state flows through unconditionally. Inference failures degrade the
// current tick, and enough consecutive failures mark the pipeline offline
// until the detector answers again. Nothing here is process-fatal.
package pipeline
