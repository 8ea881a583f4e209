//go:build integration

package xmongo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func mongoURI(t *testing.T) string {
	t.Helper()
	if uri := os.Getenv("SHOPCACHE_MONGO_URI"); uri != "" {
		return uri
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not found in PATH, skipping integration test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("mongo container not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func TestIntegration_FindOneAndPage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := Connect(ctx, Config{URI: mongoURI(t), Database: "shopcache_it"})
	require.NoError(t, err)
	defer func() { _ = m.Close(context.Background()) }()

	coll := m.Client().Database(m.Database()).Collection("products")
	require.NoError(t, coll.Drop(ctx))
	docs := make([]any, 0, 25)
	for i := range 25 {
		docs = append(docs, bson.D{
			{Key: "_id", Value: string(rune('A' + i))},
			{Key: "name", Value: "item"},
			{Key: "price", Value: float64(i)},
		})
	}
	_, err = coll.InsertMany(ctx, docs)
	require.NoError(t, err)

	var p product
	require.NoError(t, m.FindOne(ctx, "products", bson.D{{Key: "_id", Value: "C"}}, &p))
	assert.Equal(t, float64(2), p.Price)

	err = m.FindOne(ctx, "products", bson.D{{Key: "_id", Value: "missing"}}, &p)
	assert.ErrorIs(t, err, ErrNotFound)

	var page []product
	res, err := m.FindPage(ctx, "products", nil, PageOptions{
		Page:     3,
		PageSize: 10,
		Sort:     bson.D{{Key: "price", Value: 1}},
	}, &page)
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.Total)
	assert.Equal(t, int64(3), res.TotalPages)
	require.Len(t, page, 5)
	assert.Equal(t, float64(20), page[0].Price)

	require.NoError(t, m.Health(ctx))
	stats := m.Stats()
	assert.Equal(t, int64(3), stats.Queries)
	assert.Equal(t, int64(1), stats.QueryErrors)
}
