package media_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	"ayurveda_resorts/internal/adapters/media"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestPrepare_DownscalesLongEdge(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	out, err := media.Prepare(bytes.NewReader(pngBytes(t, 400, 200)), "Photo.PNG", 100, now)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if out.Width != 100 || out.Height != 50 {
		t.Fatalf("size = %dx%d", out.Width, out.Height)
	}
	if out.ContentType != "image/png" {
		t.Fatalf("content type = %s", out.ContentType)
	}
	if !strings.HasSuffix(out.Name, "_1700000000000.png") {
		t.Fatalf("name = %s", out.Name)
	}
	if _, err := png.Decode(bytes.NewReader(out.Data)); err != nil {
		t.Fatalf("output not a png: %v", err)
	}
}

func TestPrepare_KeepsSmallImages(t *testing.T) {
	out, err := media.Prepare(bytes.NewReader(pngBytes(t, 40, 30)), "a.png", 100, time.Now())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if out.Width != 40 || out.Height != 30 {
		t.Fatalf("size = %dx%d", out.Width, out.Height)
	}
}

func TestPrepare_Rejects(t *testing.T) {
	if _, err := media.Prepare(bytes.NewReader([]byte("x")), "doc.pdf", 100, time.Now()); !errors.Is(err, media.ErrUnsupportedImage) {
		t.Fatalf("pdf accepted: %v", err)
	}
	if _, err := media.Prepare(bytes.NewReader([]byte("not a png")), "a.png", 100, time.Now()); !errors.Is(err, media.ErrUnsupportedImage) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

func TestObjectName(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{13}_\d+\.jpg$`)
	a := media.ObjectName("jpg", time.Now())
	b := media.ObjectName("jpg", time.Now())
	if !re.MatchString(a) || a == b {
		t.Fatalf("names %s %s", a, b)
	}
}
