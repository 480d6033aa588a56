// Package daemon coordinates the long-running services: the emotion
// pipeline, the fan-out consumers, the HTTP API, camera hotplug monitoring,
// and single-instance locking. The IPC server drives it from the CLI.
package daemon
