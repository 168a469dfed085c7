// Package store defines the persistence contracts consumed by the task
// queue: tasks, generation profiles, daily word pools and articles.
//
// Implementations live in internal/platform/sqlstore. Every store can be
// rebound to a *sql.Tx with WithTx so that RunInTransaction can make the
// article write and the task success write commit together.
package store
