package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-shop-api/internal/core/database"
	"go-gin-shop-api/internal/domain"
)

// Runs against a real server: APP_TEST_MONGODB_URI=mongodb://localhost:27017 go test ./internal/repo
func TestMongoRepos(t *testing.T) {
	uri := os.Getenv("APP_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("APP_TEST_MONGODB_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := database.NewMongo(ctx, database.MongoOpts{URI: uri, Database: "shop_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	users, products := NewMongoUserRepo(db), NewMongoProductRepo(db)
	require.NoError(t, users.EnsureIndexes(ctx))
	require.NoError(t, products.EnsureIndexes(ctx))

	require.NoError(t, users.Create(ctx, &domain.User{ID: "u-1", Name: "A", Email: "a@x.com", PasswordHash: "h"}))
	require.ErrorIs(t, users.Create(ctx, &domain.User{ID: "u-2", Email: "a@x.com"}), domain.ErrDuplicateEmail)

	u, err := users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
	u, err = users.FindCredentialsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h", u.PasswordHash)

	require.NoError(t, products.Create(ctx, &domain.Product{ID: "p-1", Name: "red mug", Images: []string{"x"}, Price: 3, IsAvailable: true}))
	require.ErrorIs(t, products.Create(ctx, &domain.Product{ID: "p-2", Name: "red mug"}), domain.ErrDuplicateName)

	list, err := products.List(ctx, domain.ProductFilter{NameContains: "MUG"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Images)

	price := 4.0
	require.NoError(t, products.Update(ctx, "p-1", domain.ProductPatch{Price: &price}))
	require.ErrorIs(t, products.Update(ctx, "nope", domain.ProductPatch{Price: &price}), domain.ErrNotFound)
	require.NoError(t, products.Delete(ctx, "p-1"))
	require.ErrorIs(t, products.Delete(ctx, "p-1"), domain.ErrNotFound)
}
