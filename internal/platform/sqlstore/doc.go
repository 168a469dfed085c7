// Package sqlstore implements the store interfaces on database/sql for two
// dialects: PostgreSQL through pgx, and SQLite through the pure-Go modernc
// driver. Queries are built with squirrel so that the same code emits the
// placeholder style each dialect expects. Schema migrations are embedded
// and applied with goose.
package sqlstore
