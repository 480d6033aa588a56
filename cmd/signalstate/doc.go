// Command signalstate is the control CLI for the signalstated daemon. It
// talks to the daemon over the Unix control socket and exposes pipeline
// lifecycle, state inspection, session aggregates and configuration
// utilities.
package main
