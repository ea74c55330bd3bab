// Package imaging is the editor's bridge to the image library: decoding,
// encoding and the filter/adjustment transforms. Snapshots are never
// modified after creation; every transform returns a new one.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	dimaging "github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Snapshot is an immutable image state. Image must be treated as read-only.
type Snapshot struct {
	ID     string
	Image  image.Image
	Path   string
	Format string
}

func (s Snapshot) Valid() bool { return s.Image != nil }

func (s Snapshot) Size() (int, int) {
	if s.Image == nil {
		return 0, 0
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

// derive returns a new snapshot carrying img and the source metadata.
func (s Snapshot) derive(img image.Image) Snapshot {
	return Snapshot{ID: uuid.NewString(), Image: img, Path: s.Path, Format: s.Format}
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image, path string) Snapshot {
	format := ""
	if f, err := dimaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}
	return Snapshot{ID: uuid.NewString(), Image: img, Path: path, Format: format}
}

var ErrUnsupportedFormat = errors.New("unsupported image format")

// SupportedExtensions lists the file extensions Open and Encode accept.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff"}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Processor implements the editor's imaging collaborator.
type Processor struct {
	BlurSigma    float64
	SharpenSigma float64
	// AutoOrient applies EXIF orientation when decoding JPEGs.
	AutoOrient bool
}

func NewProcessor() *Processor {
	return &Processor{BlurSigma: 1.0, SharpenSigma: 1.0, AutoOrient: true}
}

func (p *Processor) Open(path string) (Snapshot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Snapshot{}, &DecodeError{Path: path, Err: errors.New("empty path")}
	}
	if !supported(path) {
		return Snapshot{}, &DecodeError{Path: path, Err: ErrUnsupportedFormat}
	}
	img, err := dimaging.Open(path, dimaging.AutoOrientation(p.AutoOrient))
	if err != nil {
		return Snapshot{}, &DecodeError{Path: path, Err: err}
	}
	return FromImage(img, path), nil
}

// Encode writes s to path. An empty format is derived from the extension.
func (p *Processor) Encode(s Snapshot, path, format string) error {
	if !s.Valid() {
		return &IOError{Path: path, Err: errors.New("no image")}
	}
	f, err := resolveFormat(path, format)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Path: path, Err: err}
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	if err := dimaging.Encode(out, s.Image, f); err != nil {
		_ = out.Close()
		return &IOError{Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

func resolveFormat(path, format string) (dimaging.Format, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		f, err := dimaging.FormatFromFilename(path)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
		}
		return f, nil
	}
	f, err := dimaging.FormatFromExtension(format)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return f, nil
}

// Preview downsamples s to fit within w x h, preserving aspect ratio.
func Preview(s Snapshot, w, h int) image.Image {
	if !s.Valid() || w <= 0 || h <= 0 {
		return nil
	}
	iw, ih := s.Size()
	if iw <= w && ih <= h {
		return s.Image
	}
	return dimaging.Fit(s.Image, w, h, dimaging.Box)
}
