// Package group runs a client group's visit: it waits for an admission
// ticket, asks the allocator for a table, eats with one actor per person
// and reports its departure. Every wait observes evacuation, and tickets
// or tables taken on the way are given back when the visit unwinds.
package group
