// Package testdb provides database fixtures for tests.
//
// Open returns stores over a private in-memory SQLite database with every
// migration applied, so store, queue and API tests run without a server:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    stores := testdb.Open(t)
//	    profile := testdb.CreateProfile(t, stores, "default", "technology")
//	    ...
//	}
//
// OpenPostgres does the same against DATABASE_URL and skips the test when
// the variable is unset. WithTx runs a function in a transaction that is
// always rolled back, isolating tests that share a Postgres database.
package testdb
