package shared_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ayurveda_resorts/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOOKING_RATE_PER_MIN", "abc")
	c := shared.Load()
	if c.HTTPAddr != ":8080" || c.StorageBucket != "images" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.BookingRatePerMin != 10 {
		t.Fatalf("bad integer should fall back, got %d", c.BookingRatePerMin)
	}
	if c.CarouselInterval != 5*time.Second {
		t.Fatalf("carousel interval = %v", c.CarouselInterval)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	content := "CONTACT_PHONE=111\nSTORAGE_BUCKET=media\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("CONTACT_PHONE", "222")
	t.Cleanup(func() { os.Unsetenv("STORAGE_BUCKET") })

	c := shared.Load()
	if c.ContactPhone != "222" {
		t.Fatalf("env should win, got %s", c.ContactPhone)
	}
	if c.StorageBucket != "media" {
		t.Fatalf(".env not applied, got %s", c.StorageBucket)
	}
}
