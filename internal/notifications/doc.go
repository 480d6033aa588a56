// Package notifications sends push notifications for daemon lifecycle events
// via ntfy. When no topic is configured the service degrades to a noop, so
// callers never have to check whether notifications are enabled.
package notifications
