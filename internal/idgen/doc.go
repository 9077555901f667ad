// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Simulation runs and journal entries are tagged with these identifiers;
// callers should treat them as opaque strings.
package idgen
