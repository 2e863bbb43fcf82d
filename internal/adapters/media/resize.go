package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

const DefaultMaxEdge = 2000

// Image is an upload ready for the object store.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Prepare decodes an uploaded image, fits it inside maxEdge×maxEdge and
// re-encodes it in its original format. Smaller images keep their size.
func Prepare(r io.Reader, filename string, maxEdge int, now time.Time) (Image, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	b := img.Bounds()
	if b.Dx() > maxEdge || b.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return Image{}, fmt.Errorf("encode image: %w", err)
	}
	out := img.Bounds()
	return Image{
		Name:        ObjectName(ext, now),
		ContentType: contentType(format),
		Data:        buf.Bytes(),
		Width:       out.Dx(),
		Height:      out.Dy(),
	}, nil
}

// ObjectName is "<random>_<unix millis>.<ext>".
func ObjectName(ext string, now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
	return fmt.Sprintf("%s_%d.%s", token, now.UnixMilli(), ext)
}

func contentType(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}
