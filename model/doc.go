// Package model contains the in-memory representation of the restaurant:
// dishes travelling on the belt, tables with their seat slots, client groups
// and the bounded FIFO used for waiting parties.
//
// The types are plain data holders with small, lock-free helpers, except for
// Group, which is mutated concurrently by its own person actors and therefore
// guards its counters with a private mutex.
package model
