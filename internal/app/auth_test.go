package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/domain"
)

func newAuth(t *testing.T) (*app.AuthService, *fakeRevoker) {
	t.Helper()
	hash, err := app.HashPassword("s3cret")
	require.NoError(t, err)
	dir := &fakeDirectory{users: map[string]domain.AdminUser{
		"admin@example.com": {ID: 7, Email: "admin@example.com", PasswordHash: hash},
	}}
	rev := &fakeRevoker{}
	return app.NewAuthService(dir, rev, "test-secret"), rev
}

func TestAuth_SignInAndSession(t *testing.T) {
	auth, _ := newAuth(t)
	token, sess, err := auth.SignIn(context.Background(), " Admin@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(7), sess.AdminID)
	assert.WithinDuration(t, time.Now().Add(app.SessionTTL), sess.ExpiresAt, time.Minute)

	got, err := auth.Session(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "admin@example.com", got.Email)
}

func TestAuth_BadCredentials(t *testing.T) {
	auth, _ := newAuth(t)
	for _, tc := range []struct{ email, pw string }{
		{"admin@example.com", "wrong"},
		{"nobody@example.com", "s3cret"},
		{"", ""},
	} {
		_, _, err := auth.SignIn(context.Background(), tc.email, tc.pw)
		assert.True(t, errors.Is(err, domain.ErrInvalidCredentials), "%s: %v", tc.email, err)
	}
}

func TestAuth_RejectsForeignTokens(t *testing.T) {
	auth, _ := newAuth(t)
	other := app.NewAuthService(&fakeDirectory{users: map[string]domain.AdminUser{}}, nil, "other")
	_, err := other.Session(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	token, _, err := auth.SignIn(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	_, err = other.Session(context.Background(), token)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestAuth_SignOutRevokesAndNotifies(t *testing.T) {
	auth, rev := newAuth(t)
	events, cancel := auth.Subscribe()
	defer cancel()

	token, sess, err := auth.SignIn(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	ev := <-events
	assert.Equal(t, app.SessionSignedIn, ev.Kind)

	require.NoError(t, auth.SignOut(context.Background(), token))
	ev = <-events
	assert.Equal(t, app.SessionSignedOut, ev.Kind)
	assert.Equal(t, sess.ID, ev.SessionID)
	assert.Greater(t, rev.revoked[sess.ID], time.Hour)

	_, err = auth.Session(context.Background(), token)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
