package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "ayurveda_resorts/internal/adapters/redis"
	"ayurveda_resorts/internal/domain"
)

func newTestCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisad.NewFromClient(client), mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	snap := domain.Snapshot{
		Hero: []string{"https://x/1.jpg"},
		Resorts: []domain.Resort{{
			ID: "a", Name: "A", Visible: true,
			Features: []domain.Feature{{Icon: domain.IconLeaf, Title: "t"}},
			PackageCategories: []domain.PackageCategory{{
				Title:      "c",
				PriceTiers: []domain.PriceTier{{DurationLabel: "7", PriceSingle: domain.NewPrice(125050)}},
			}},
		}},
		Schema: domain.SchemaCatalog,
	}
	require.NoError(t, c.Set(ctx, "catalog:snapshot", snap, 60))
	assert.True(t, mr.Exists("catalog:snapshot"))

	var got domain.Snapshot
	ok, err := c.Get(ctx, "catalog:snapshot", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.IconLeaf, got.Resorts[0].Features[0].Icon)
	assert.Equal(t, "1250.50", got.Resorts[0].PackageCategories[0].PriceTiers[0].PriceSingle.String())

	mr.FastForward(61 * time.Second)
	ok, err = c.Get(ctx, "catalog:snapshot", &got)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire")

	require.NoError(t, c.Set(ctx, "k", 1, 60))
	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestCache_UndecodableIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("catalog:snapshot", "{not json"))

	var got domain.Snapshot
	ok, err := c.Get(context.Background(), "catalog:snapshot", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Revocation(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	revoked, err := c.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, c.Revoke(ctx, "jti-1", time.Hour))
	revoked, err = c.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, _ = c.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked, "revocation should lapse with the token")
}

func TestCache_Ping(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
