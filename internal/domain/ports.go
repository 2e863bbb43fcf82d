package domain

import (
	"context"
	"time"
)

// ContentStore is the key/value table holding serialized site content.
type ContentStore interface {
	FetchAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

// BookingSink appends one row per booking submission.
type BookingSink interface {
	InsertBooking(ctx context.Context, b BookingRecord) error
}

type ObjectStore interface {
	Upload(ctx context.Context, bucket, filename, contentType string, data []byte) (string, error)
}

type AdminDirectory interface {
	FindAdminByEmail(ctx context.Context, email string) (AdminUser, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type SessionRevoker interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}
