// Package tracing wraps OpenTelemetry so simulation actors can record spans
// (a group's visit, a cooked dish, a whole run) without importing the
// upstream packages directly.
package tracing
