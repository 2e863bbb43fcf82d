package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ayurveda_resorts/internal/adapters/observability"
	"ayurveda_resorts/internal/domain"
)

// valPrice stores an unparsed legacy price as NULL.
func valPrice(p domain.Price) any {
	if !p.Valid() {
		return nil
	}
	return p.String()
}

func valTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Repo implements the content store, booking sink and admin directory.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) FetchAll(ctx context.Context) (map[string]string, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, selectContentSQL)
	observe("site_content.select", err, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v.String
	}
	return out, rows.Err()
}

func (r *Repo) Upsert(ctx context.Context, key, value string) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, upsertContentSQL, key, value)
	observe("site_content.upsert", err, start)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (r *Repo) InsertBooking(ctx context.Context, b domain.BookingRecord) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.Name,
		b.Phone,
		b.Email,
		b.Date,
		b.Plan,
		b.ResortName,
		b.Duration,
		string(b.RoomType),
		valPrice(b.Price),
		valTime(b.CreatedAt),
	)
	observe("bookings.insert", err, start)
	observability.ObserveBooking(err)
	return err
}

func (r *Repo) FindAdminByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.db.QueryRowContext(ctx, selectAdminByEmailSQL, email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AdminUser{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AdminUser{}, err
	}
	return u, nil
}

// UpsertAdmin creates or re-keys an editor account.
func (r *Repo) UpsertAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, upsertAdminSQL, email, passwordHash)
	return err
}

func observe(endpoint string, err error, start time.Time) {
	status := 200
	if err != nil {
		status = 500
	}
	observability.ObserveExternal("mysql", endpoint, status, time.Since(start))
}
