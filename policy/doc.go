// Package policy defines how waiting queues are drained when a table frees.
package policy
