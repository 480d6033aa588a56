// Package capture abstracts the frame source feeding the admission loop.
//
// Camera acquisition mechanics are an external collaborator; this package
// only defines the Source contract plus lightweight implementations used for
// development and testing (a synthetic generator and a directory reader).
// Frames are ephemeral: the admission controller owns a frame only until the
// inference call returns and never retains it afterwards.
package capture
