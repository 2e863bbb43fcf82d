package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ayurveda_resorts/internal/domain"
)

const SessionTTL = 12 * time.Hour

type AdminClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// Session is a verified admin sign-in.
type Session struct {
	ID        string    `json:"id"`
	AdminID   int64     `json:"adminId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionEventKind int

const (
	SessionSignedIn SessionEventKind = iota + 1
	SessionSignedOut
)

type SessionEvent struct {
	Kind      SessionEventKind
	SessionID string
	Email     string
}

// AuthService signs admins in with email/password and hands out bearer
// tokens.
type AuthService struct {
	dir     domain.AdminDirectory
	revoker domain.SessionRevoker
	secret  []byte
	ttl     time.Duration
	now     func() time.Time

	mu   sync.Mutex
	subs map[int]chan SessionEvent
	next int
}

func NewAuthService(dir domain.AdminDirectory, revoker domain.SessionRevoker, secret string) *AuthService {
	return &AuthService{
		dir:     dir,
		revoker: revoker,
		secret:  []byte(secret),
		ttl:     SessionTTL,
		now:     time.Now,
		subs:    make(map[int]chan SessionEvent),
	}
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// SignIn returns a signed token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", Session{}, domain.ErrInvalidCredentials
	}
	u, err := s.dir.FindAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", Session{}, domain.ErrInvalidCredentials
		}
		return "", Session{}, fmt.Errorf("lookup admin: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", Session{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		AdminID:   u.ID,
		Email:     u.Email,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}
	claims := AdminClaims{
		AdminID: u.ID,
		Email:   u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign token: %w", err)
	}
	s.publish(SessionEvent{Kind: SessionSignedIn, SessionID: sess.ID, Email: sess.Email})
	return token, sess, nil
}

// Session verifies a bearer token and checks it has not been signed out.
func (s *AuthService) Session(ctx context.Context, token string) (Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Session{}, domain.ErrUnauthorized
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Session{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return Session{}, domain.ErrUnauthorized
		}
	}
	return Session{
		ID:        claims.ID,
		AdminID:   claims.AdminID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	sess, err := s.Session(ctx, token)
	if err != nil {
		return err
	}
	if s.revoker != nil {
		ttl := sess.ExpiresAt.Sub(s.now())
		if ttl < time.Second {
			ttl = time.Second
		}
		if err := s.revoker.Revoke(ctx, sess.ID, ttl); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	s.publish(SessionEvent{Kind: SessionSignedOut, SessionID: sess.ID, Email: sess.Email})
	return nil
}

// Subscribe delivers session changes until cancel is called. Slow
// subscribers miss events rather than block sign-in.
func (s *AuthService) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 16)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *AuthService) publish(ev SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *AuthService) parse(token string) (*AdminClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &AdminClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
