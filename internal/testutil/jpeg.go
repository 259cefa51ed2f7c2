// Package testutil builds photo fixtures for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/tonimelisma/photosidecar/internal/exifblock"
)

// WriteJPEG writes a small JPEG to path, creating parent directories. When
// block is non-nil it is embedded as the EXIF segment.
func WriteJPEG(t *testing.T, path string, block *exifblock.Block) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 60), uint8(y * 60), 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}

	if block == nil {
		return
	}
	if err := exifblock.Insert(block, path); err != nil {
		t.Fatalf("Failed to insert EXIF block into %s: %v", path, err)
	}
}

// CaptureBlock returns a block with DateTimeOriginal set to stamp (EXIF
// layout) and, when gps is true, a coordinate pair near the Sydney Opera
// House (-33.8568, 151.2153).
func CaptureBlock(stamp string, gps bool) *exifblock.Block {
	b := exifblock.NewSkeleton()
	if stamp != "" {
		b.SetASCII(exifblock.Capture, exifblock.TagDateTimeOriginal, stamp)
	}
	if gps {
		SetGPS(b, -33.8568, 151.2153)
	}
	return b
}
