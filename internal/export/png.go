package export

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/san-kum/mandelscope/internal/fractal"
)

// Metadata is written next to every exported image so a view can be
// reproduced from the file alone.
type Metadata struct {
	Params    fractal.RenderParameters `json:"params"`
	Bounds    fractal.Rect             `json:"bounds"`
	Backend   string                   `json:"backend,omitempty"`
	ElapsedMs int64                    `json:"elapsed_ms"`
	CreatedAt time.Time                `json:"created_at"`
}

// WritePNG encodes pb as PNG.
func WritePNG(w io.Writer, pb fractal.PixelBuffer) error {
	if len(pb.Pix) != pb.Width*pb.Height*4 || pb.Width <= 0 || pb.Height <= 0 {
		return fmt.Errorf("export: pixel buffer is %d bytes for %dx%d: %w", len(pb.Pix), pb.Width, pb.Height, fractal.ErrInvalidDimension)
	}
	return png.Encode(w, pb.Image())
}

// WritePNGFile encodes pb into a new file at path. A failed close is
// reported, since buffered data may not have reached the disk.
func WritePNGFile(path string, pb fractal.PixelBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, pb); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SavePNG writes path (forced to a .png extension) and a .json sidecar.
// It returns the image and sidecar paths.
func SavePNG(path string, pb fractal.PixelBuffer, meta Metadata) (string, string, error) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	imgPath := base + ".png"
	metaPath := base + ".json"

	if dir := filepath.Dir(imgPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", "", err
		}
	}

	if err := WritePNGFile(imgPath, pb); err != nil {
		return "", "", err
	}

	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	data, err := sonic.ConfigStd.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("export: encode metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return "", "", err
	}

	return imgPath, metaPath, nil
}

// LoadMetadata reads a sidecar written by SavePNG.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := sonic.ConfigStd.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("export: decode metadata: %w", err)
	}
	return &meta, nil
}
