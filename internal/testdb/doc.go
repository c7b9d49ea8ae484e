//go:build integration

// Package testdb provides connection and isolation helpers for integration
// tests that run against a real PostgreSQL or MongoDB server.
//
// Tests are skipped, not failed, when the server URL is not configured:
//
//	func TestFoodStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        foods := postgres.NewFoodStore(tx, nil)
//	        // changes are rolled back when fn returns
//	    })
//	}
//
// # Environment Variables
//
// - DATABASE_URL or SHAREPLATE_TEST_DB_URL: PostgreSQL connection string
// - MONGODB_URL or SHAREPLATE_TEST_MONGODB_URL: MongoDB connection string
package testdb
