// Package ipc exposes daemon control over JSON-RPC on a Unix domain socket.
// The CLI is the only intended client; the HTTP API covers remote callers.
package ipc
