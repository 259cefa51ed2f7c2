// Package restore writes saved metadata back into photo files, matching
// records to files by name anywhere under a target directory.
package restore

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

// State is the outcome of restoring one record.
type State int

const (
	Restored State = iota
	SkippedNoMatch
	FailedRestore
)

func (s State) String() string {
	switch s {
	case Restored:
		return "restored"
	case SkippedNoMatch:
		return "no match"
	case FailedRestore:
		return "failed"
	}
	return "unknown"
}

var gpsVersion = []byte{2, 2, 0, 0}

// Result reports what happened to one record.
type Result struct {
	Path   string
	Target string
	State  State
	Err    error
	// Warnings are merge problems that did not prevent the write.
	Warnings []string
	// Unchanged is set when the file already carried the merged block.
	Unchanged bool
	// CreationTimeUnsupported is set when the platform cannot change a
	// file's creation time.
	CreationTimeUnsupported bool
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Report aggregates the results of a run.
type Report struct {
	Results  []Result
	Restored int
	Skipped  int
	Failed   int
}

// Restorer merges records into matching files. A nil Clock leaves file
// creation times alone. With UseSavedBlock, a target without EXIF starts from
// a copy of the record's saved block instead of an empty one.
type Restorer struct {
	Clock         birthtime.Capability
	Log           zerolog.Logger
	UseSavedBlock bool
}

// Run restores every record of set into the files under targetRoot. Only a
// failing scan of targetRoot is returned as an error.
func (r *Restorer) Run(set *photo.MetadataSet, targetRoot string) (Report, error) {
	var report Report
	index, err := scan.Index(targetRoot)
	if err != nil {
		return report, fmt.Errorf("scanning %s: %w", targetRoot, err)
	}

	for _, path := range set.Paths() {
		rec := set.Photos[path]
		res := r.one(path, rec, index)
		switch res.State {
		case Restored:
			report.Restored++
		case SkippedNoMatch:
			report.Skipped++
		case FailedRestore:
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func (r *Restorer) one(path string, rec *photo.Record, index map[string][]string) Result {
	res := Result{Path: path}
	name := rec.Name
	if name == "" {
		name = filepath.Base(path)
	}
	log := r.Log.With().Str("file", name).Logger()

	candidates := index[name]
	if len(candidates) == 0 {
		log.Info().Msg("no matching file in target")
		res.State = SkippedNoMatch
		return res
	}
	if len(candidates) > 1 {
		log.Warn().Strs("candidates", candidates).Msg("several files share this name, using the first")
		res.warn("%d files named %s, restored into the first", len(candidates), name)
	}
	res.Target = candidates[0]

	block := r.baseBlock(res.Target, rec, log)
	r.mergeDate(block, rec, &res)
	r.mergeGPS(block, rec, &res)

	unchanged, err := commit(block, res.Target)
	if err != nil {
		log.Error().Err(err).Str("target", res.Target).Msg("restore failed")
		res.State = FailedRestore
		res.Err = err
		return res
	}
	res.Unchanged = unchanged
	res.State = Restored
	log.Info().Str("target", res.Target).Bool("unchanged", unchanged).Msg("restored")

	r.mergeCreationTime(rec, &res, log)
	return res
}

// baseBlock returns the block the merge starts from: the target's own, then
// optionally the saved one, then an empty skeleton.
func (r *Restorer) baseBlock(target string, rec *photo.Record, log zerolog.Logger) *exifblock.Block {
	block, err := exifblock.LoadFile(target)
	if err == nil {
		return block
	}
	log.Debug().Err(err).Msg("target has no readable EXIF block")
	if r.UseSavedBlock && rec.Raw != nil {
		return rec.Raw.Clone()
	}
	return exifblock.NewSkeleton()
}

func (r *Restorer) mergeDate(block *exifblock.Block, rec *photo.Record, res *Result) {
	if !rec.HasDateTime() {
		return
	}
	stamp, err := rec.ExifDateTime()
	if err != nil {
		res.warn("date not restored: %v", err)
		return
	}
	block.SetASCII(exifblock.Capture, exifblock.TagDateTimeOriginal, stamp)
	block.SetASCII(exifblock.Capture, exifblock.TagDateTimeDigitized, stamp)
	block.SetASCII(exifblock.Primary, exifblock.TagDateTime, stamp)
}

func (r *Restorer) mergeGPS(block *exifblock.Block, rec *photo.Record, res *Result) {
	if !rec.HasGPS() {
		return
	}
	lat, lon := *rec.Latitude, *rec.Longitude
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		res.warn("GPS not restored: %v, %v is out of range", lat, lon)
		return
	}
	latDMS := coords.ToSexagesimal(lat)
	lonDMS := coords.ToSexagesimal(lon)

	if !block.Has(exifblock.GPS, exifblock.TagGPSVersionID) {
		block.SetBytes(exifblock.GPS, exifblock.TagGPSVersionID, gpsVersion)
	}
	block.SetASCII(exifblock.GPS, exifblock.TagGPSLatitudeRef, coords.RefFor(lat, coords.Latitude))
	block.SetRationals(exifblock.GPS, exifblock.TagGPSLatitude, latDMS[:])
	block.SetASCII(exifblock.GPS, exifblock.TagGPSLongitudeRef, coords.RefFor(lon, coords.Longitude))
	block.SetRationals(exifblock.GPS, exifblock.TagGPSLongitude, lonDMS[:])
}

// commit writes block into target unless the file already carries the same
// payload.
func commit(block *exifblock.Block, target string) (unchanged bool, err error) {
	payload, err := block.Dump()
	if err != nil {
		return false, fmt.Errorf("serialising EXIF block: %w", err)
	}
	if current, err := exifblock.Payload(target); err == nil && exifblock.Fingerprint(current) == exifblock.Fingerprint(payload) {
		return true, nil
	}
	if err := exifblock.Insert(block, target); err != nil {
		return false, fmt.Errorf("writing EXIF block: %w", err)
	}
	return false, nil
}

func (r *Restorer) mergeCreationTime(rec *photo.Record, res *Result, log zerolog.Logger) {
	if r.Clock == nil || !rec.HasDateTime() {
		return
	}
	t, err := rec.Timestamp(time.Local)
	if err != nil {
		res.warn("creation time not set: %v", err)
		return
	}
	err = r.Clock.SetCreationTime(res.Target, t)
	switch {
	case errors.Is(err, birthtime.ErrUnsupported):
		res.CreationTimeUnsupported = true
		log.Debug().Msg("creation time cannot be changed on this platform")
	case err != nil:
		res.warn("creation time not set: %v", err)
	}
}
