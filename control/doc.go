// Package control holds the simulation-wide control state: the speed level
// and the two cancellation flags (graceful terminate and evacuate). Every
// actor reads it at each suspension point; only a control actor writes it.
package control
