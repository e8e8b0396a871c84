// Package upload validates and normalizes user-submitted images. Every
// accepted image is decoded, downscaled when oversized, and re-encoded
// as JPEG, which also strips any embedded metadata.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxDimension = 1920
	jpegQuality  = 85
)

// ErrUnsupportedFormat is returned when the payload is not a decodable
// image of an allowed type.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Result describes a stored image.
type Result struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Processor stores processed images under a local directory.
type Processor struct {
	dir string
}

// NewProcessor creates the upload directory if needed.
func NewProcessor(dir string) (*Processor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Processor{dir: dir}, nil
}

// SaveImage reads an image, verifies its type by content sniffing,
// scales it down to fit maxDimension, and writes it as JPEG under a
// random filename.
func (p *Processor) SaveImage(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read image: %w", err)
	}

	// Sniff the real content type; the client-declared one is not
	// trustworthy.
	if !allowedTypes[http.DetectContentType(data)] {
		return Result{}, ErrUnsupportedFormat
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, ErrUnsupportedFormat
	}

	img := downscale(src)

	name := uuid.NewString() + ".jpg"
	path := filepath.Join(p.dir, name)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("write image: %w", err)
	}

	return Result{URL: "/uploads/" + name, Filename: name}, nil
}

// downscale shrinks the image so neither side exceeds maxDimension,
// preserving the aspect ratio. Smaller images pass through untouched.
func downscale(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDimension && h <= maxDimension {
		return src
	}

	if w >= h {
		h = h * maxDimension / w
		w = maxDimension
	} else {
		w = w * maxDimension / h
		h = maxDimension
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
