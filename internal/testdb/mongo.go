//go:build integration

package testdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetTestMongoDBWithT returns a uniquely named database that is dropped when
// the test ends. It skips the test if no MongoDB URL is configured.
func GetTestMongoDBWithT(t *testing.T) *mongo.Database {
	t.Helper()

	uri := GetTestMongoURL()
	if uri == "" {
		t.Skip("MONGODB_URL or SHAREPLATE_TEST_MONGODB_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true}))
	require.NoError(t, err, "Failed to connect to mongodb")
	require.NoError(t, client.Ping(ctx, nil), "MongoDB ping failed")

	db := client.Database(fmt.Sprintf("shareplate_test_%s", uuid.NewString()[:8]))

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		if err := db.Drop(cleanupCtx); err != nil {
			t.Logf("Warning: failed to drop test database: %v", err)
		}
		if err := client.Disconnect(cleanupCtx); err != nil {
			t.Logf("Warning: failed to disconnect from mongodb: %v", err)
		}
	})

	return db
}
