// Package extract reads the essential metadata of photos: capture date and
// time, GPS position and the complete EXIF block.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonimelisma/photosidecar/internal/birthtime"
	"github.com/tonimelisma/photosidecar/internal/coords"
	"github.com/tonimelisma/photosidecar/internal/exifblock"
	"github.com/tonimelisma/photosidecar/internal/photo"
	"github.com/tonimelisma/photosidecar/internal/scan"
)

// Extractor builds photo records. Clock supplies the file-system creation
// time used when a photo carries no capture date of its own.
type Extractor struct {
	Clock   birthtime.Capability
	Log     zerolog.Logger
	MapLink string
}

// New returns an Extractor using the platform's creation-time support.
func New(log zerolog.Logger) *Extractor {
	return &Extractor{Clock: birthtime.Native(), Log: log}
}

// Tally counts the outcome of a batch.
type Tally struct {
	Extracted int
	Degraded  int
}

// File extracts one photo. It always returns a record; a non-nil error is a
// file-level fault whose text is also stored in Record.Error.
func (e *Extractor) File(path string) (*photo.Record, error) {
	rec := photo.NewRecord(filepath.Base(path))
	log := e.Log.With().Str("file", rec.Name).Logger()

	if e.Clock != nil {
		if t, err := e.Clock.CreationTime(path); err != nil {
			log.Warn().Err(err).Msg("cannot read file creation time")
		} else {
			rec.SetDateTime(t.Local())
		}
	}

	var err error
	if _, kind := scan.TypeOf(path); kind == scan.HEIF {
		err = e.heif(path, rec)
	} else {
		err = e.still(path, rec, log)
	}
	if err != nil {
		rec.Error = err.Error()
		return rec, err
	}
	return rec, nil
}

func (e *Extractor) still(path string, rec *photo.Record, log zerolog.Logger) error {
	block, err := exifblock.LoadFile(path)
	if errors.Is(err, exifblock.ErrNoExif) {
		log.Debug().Msg("no embedded EXIF block")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading EXIF: %w", err)
	}
	rec.Raw = block

	if raw, ok := captureTag(block); ok && raw != "" {
		if t, err := time.ParseInLocation(photo.ExifLayout, raw, time.Local); err != nil {
			log.Warn().Str("value", raw).Msg("capture date does not parse, keeping raw value")
			rec.SetRawDateTime(raw)
		} else {
			rec.SetDateTime(t)
		}
	}

	lat, latOK, err := axis(block, exifblock.TagGPSLatitude, exifblock.TagGPSLatitudeRef)
	if err != nil {
		return fmt.Errorf("GPS latitude: %w", err)
	}
	lon, lonOK, err := axis(block, exifblock.TagGPSLongitude, exifblock.TagGPSLongitudeRef)
	if err != nil {
		return fmt.Errorf("GPS longitude: %w", err)
	}
	switch {
	case latOK && lonOK:
		rec.SetCoordinates(lat, lon, e.MapLink)
	case latOK || lonOK:
		log.Debug().Msg("only one GPS axis present, ignoring position")
	}
	return nil
}

// captureTag returns DateTimeOriginal when the Exif section has it, and the
// primary DateTime otherwise.
func captureTag(b *exifblock.Block) (string, bool) {
	if b.Has(exifblock.Capture, exifblock.TagDateTimeOriginal) {
		return b.ASCII(exifblock.Capture, exifblock.TagDateTimeOriginal)
	}
	return b.ASCII(exifblock.Primary, exifblock.TagDateTime)
}

// axis resolves one GPS coordinate. ok is false when the triple or its
// reference letter is missing.
func axis(b *exifblock.Block, valueTag, refTag uint16) (value float64, ok bool, err error) {
	angles, found := b.Angles(exifblock.GPS, valueTag)
	if !found {
		return 0, false, nil
	}
	ref, found := b.ASCII(exifblock.GPS, refTag)
	if !found {
		return 0, false, nil
	}
	if len(angles) != 3 {
		return 0, false, fmt.Errorf("expected 3 components, got %d", len(angles))
	}
	value, err = coords.ToDecimal([3]coords.Angle{angles[0], angles[1], angles[2]}, ref)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

// Dir extracts every supported photo under root. Per-file faults are tallied
// and never stop the batch; only a failing scan is returned as an error.
func (e *Extractor) Dir(root string) (*photo.MetadataSet, Tally, error) {
	var tally Tally
	files, err := scan.Files(root)
	if err != nil {
		return nil, tally, fmt.Errorf("scanning %s: %w", root, err)
	}
	e.Log.Info().Int("count", len(files)).Str("root", root).Msg("found photos")

	set := photo.NewSet()
	for _, path := range files {
		e.Log.Debug().Str("path", path).Msg("extracting")
		rec, err := e.File(path)
		if err != nil {
			tally.Degraded++
			e.Log.Error().Err(err).Str("path", path).Msg("extraction degraded")
		} else {
			tally.Extracted++
		}
		set.Photos[path] = rec
	}
	return set, tally, nil
}
