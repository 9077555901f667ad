// Package allocator matches waiting groups to tables. It is the only
// service that seats or unseats groups: requests from group actors arrive
// on a message queue, and every seating or departure drains the waiting
// queues under the configured drain policy.
package allocator
