// Package admission gates arriving groups into the VIP and Normal waiting
// queues.
//
// Each class has a bounded ticket pool sized to its queue length; a group
// must hold a ticket before it can wait for a table, so an exhausted pool
// blocks new arrivals. Tickets return to the pool when the group is seated,
// withdraws or is rejected. An optional barrier keeps every group queued
// until a target number of arrivals has been recorded.
package admission
