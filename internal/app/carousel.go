package app

import (
	"context"
	"net/url"
	"strings"
	"time"
)

const DefaultCarouselInterval = 5 * time.Second

// Carousel advances a slide index on a fixed interval.
type Carousel struct {
	Interval time.Duration
}

// Start emits the current index, starting at 0. With fewer than two images
// it emits at most once and closes without starting a timer. Otherwise the
// channel closes when ctx is done.
func (c Carousel) Start(ctx context.Context, n int) <-chan int {
	out := make(chan int, 1)
	if n <= 1 {
		if n == 1 {
			out <- 0
		}
		close(out)
		return out
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultCarouselInterval
	}
	go func() {
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()
		i := 0
		for {
			select {
			case out <- i:
			case <-ctx.Done():
				return
			}
			select {
			case <-t.C:
				i = (i + 1) % n
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// View is the top-level page a URL resolves to.
type View string

const (
	ViewHome  View = "home"
	ViewAdmin View = "admin"
)

// ResolveView maps "?mode=admin" or "#admin" to the admin view.
func ResolveView(rawURL string) View {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ViewHome
	}
	if u.Query().Get("mode") == "admin" || strings.EqualFold(u.Fragment, "admin") {
		return ViewAdmin
	}
	return ViewHome
}
