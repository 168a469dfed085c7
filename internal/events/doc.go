// Package events carries task lifecycle notifications out of the queue.
//
// The queue emits a TaskEvent when a task is enqueued, claimed, succeeded
// or failed. Emitters fan events out to registered handlers; handler errors
// are reported to the emitter's caller but never change queue behavior.
package events
