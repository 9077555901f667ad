// Package belt implements the conveyor belt: a fixed array of dish slots
// shared by the kitchen (producer) and the seated groups (consumers).
//
// Two counting semaphores bound the belt. The slot semaphore admits a
// producer only when a free slot exists; the item semaphore admits a
// consumer only when at least one dish is on the belt. A consumer that wins
// an item token but finds no dish matching its predicate returns the token
// before reporting a miss, so a consumer that cannot eat never starves the
// one that can.
//
// Every wait is bounded by the control poll interval and re-checks the
// evacuation flag on wake-up.
package belt
