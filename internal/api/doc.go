// Package api defines the JSON DTOs shared by the HTTP surface and the IPC
// protocol, plus conversions from internal types. Keeping the wire shapes
// here stops the daemon internals from leaking into clients.
package api
