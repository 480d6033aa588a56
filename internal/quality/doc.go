// Package quality derives human-readable frame warnings (lighting, head
// angle, occlusion) from raw signal features.
//
// Assessment is a pure function of the current frame's landmarks and stats;
// it never consults smoothing history, so a failed smoothing step can never
// lose the quality signal. Warning order is stable for deterministic
// consumer rendering: lighting, then angle, then occlusion.
package quality
