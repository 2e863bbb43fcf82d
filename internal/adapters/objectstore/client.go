package objectstore

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ayurveda_resorts/internal/adapters/observability"
	"ayurveda_resorts/internal/domain"
)

// Client uploads public images to a Supabase-compatible storage API.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, serviceKey string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("storage URL is required")
	}
	if serviceKey == "" {
		return nil, fmt.Errorf("storage service key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		key:  serviceKey,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// PublicURL is where an uploaded object can be fetched without credentials.
func (c *Client) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.base, url.PathEscape(bucket), url.PathEscape(name))
}

// Upload stores data under bucket/name, overwriting any existing object,
// and returns its public URL. Permission-shaped refusals wrap
// domain.ErrStoragePermission.
func (c *Client) Upload(ctx context.Context, bucket, name, contentType string, data []byte) (string, error) {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.base, url.PathEscape(bucket), url.PathEscape(name))
	if err := c.send(ctx, u, contentType, data); err != nil {
		return "", err
	}
	return c.PublicURL(bucket, name), nil
}

// send POSTs with client-side rate limiting and retries on 429 and
// transient 5xx, honoring Retry-After when provided.
func (c *Client) send(ctx context.Context, u, contentType string, data []byte) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("apikey", c.key)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-upsert", "true")
		req.Header.Set("User-Agent", "ayurveda-resorts/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("storage", "upload", 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("storage", "upload", resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("storage %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return classify(resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

func classify(status int, body string) error {
	low := strings.ToLower(body)
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		strings.Contains(low, "bucket not found"),
		strings.Contains(low, "row-level security"),
		strings.Contains(low, "unauthorized"):
		return fmt.Errorf("%w: status %d: %s", domain.ErrStoragePermission, status, body)
	}
	return fmt.Errorf("storage status %d: %s", status, body)
}

// IsPermission reports whether err came from a permission-shaped refusal.
func IsPermission(err error) bool { return errors.Is(err, domain.ErrStoragePermission) }

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
