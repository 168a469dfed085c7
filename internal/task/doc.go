// Package task implements the generation task queue: enqueueing one task
// per profile for a business date, claiming queued tasks with an
// optimistic version check, running the generation pipeline and recording
// the outcome.
package task
