package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"ayurveda_resorts/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu       sync.Mutex
	rows     map[string]string
	fetchErr error
	failKey  map[string]error
	fetches  int
}

func newFakeStore(rows map[string]string) *fakeStore {
	if rows == nil {
		rows = map[string]string{}
	}
	return &fakeStore{rows: rows, failKey: map[string]error{}}
}

func (f *fakeStore) FetchAll(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make(map[string]string, len(f.rows))
	for k, v := range f.rows {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) Upsert(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failKey[key]; err != nil {
		return err
	}
	f.rows[key] = value
	return nil
}

func (f *fakeStore) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[key]
	return v, ok
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels++
	delete(c.store, key)
	return nil
}

type fakeSink struct {
	mu    sync.Mutex
	err   error
	delay time.Duration
	got   []domain.BookingRecord
}

func (s *fakeSink) InsertBooking(ctx context.Context, b domain.BookingRecord) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, b)
	return s.err
}

func (s *fakeSink) records() []domain.BookingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BookingRecord(nil), s.got...)
}

type fakeDirectory struct {
	users map[string]domain.AdminUser
	err   error
}

func (d *fakeDirectory) FindAdminByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	if d.err != nil {
		return domain.AdminUser{}, d.err
	}
	u, ok := d.users[email]
	if !ok {
		return domain.AdminUser{}, domain.ErrNotFound
	}
	return u, nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *fakeRevoker) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[id] = ttl
	return nil
}

func (r *fakeRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok, nil
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
