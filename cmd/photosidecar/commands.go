package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonimelisma/photosidecar/internal/birthtime"
	"github.com/tonimelisma/photosidecar/internal/exifblock"
	"github.com/tonimelisma/photosidecar/internal/extract"
	"github.com/tonimelisma/photosidecar/internal/fixdates"
	"github.com/tonimelisma/photosidecar/internal/photo"
	"github.com/tonimelisma/photosidecar/internal/restore"
	"github.com/tonimelisma/photosidecar/internal/store"
)

// app carries what every subcommand needs.
type app struct {
	cfg    config
	log    zerolog.Logger
	prompt *prompter
	out    io.Writer
	clock  birthtime.Capability
}

func (a *app) capability() birthtime.Capability {
	if a.clock == nil {
		return birthtime.Native()
	}
	return a.clock
}

func (a *app) store(dir string) *store.Store {
	return store.New(filepath.Join(dir, a.cfg.DocumentName), a.log)
}

func (a *app) extractor() *extract.Extractor {
	return &extract.Extractor{Clock: a.capability(), Log: a.log, MapLink: a.cfg.MapURL}
}

func (a *app) extract(cmd *extractCmd) error {
	dir, err := a.prompt.dir(cmd.Dir, "Photo directory: ")
	if err != nil {
		return err
	}

	start := time.Now()
	set, tally, err := a.extractor().Dir(dir)
	if err != nil {
		return fmt.Errorf("extracting metadata: %w", err)
	}
	if set.Total() == 0 {
		fmt.Fprintln(a.out, "No photos found.")
		return nil
	}

	st := a.store(dir)
	if err := st.Save(set); err != nil {
		return err
	}
	size := int64(0)
	if info, err := os.Stat(st.Path); err == nil {
		size = info.Size()
	}

	printSummary(a.out, set)
	fmt.Fprintf(a.out, "Metadata saved to %s (%s)\n", st.Path, humanReadableSize(size))
	fmt.Fprintf(a.out, "Extracted %d photos, %d with errors, in %s\n", tally.Extracted+tally.Degraded, tally.Degraded, humanReadableDuration(time.Since(start)))
	return nil
}

func (a *app) summary(cmd *summaryCmd) error {
	dir, err := a.prompt.dir(cmd.Dir, "Photo directory: ")
	if err != nil {
		return err
	}
	set, err := a.store(dir).Load()
	if err != nil {
		return fmt.Errorf("loading metadata: %w", err)
	}
	printSummary(a.out, set)
	return nil
}

func (a *app) restore(cmd *restoreCmd) error {
	dir, err := a.prompt.dir(cmd.Dir, "Directory holding the metadata document: ")
	if err != nil {
		return err
	}
	target := dir
	if cmd.Target != "" {
		if target, err = a.prompt.dir(cmd.Target, ""); err != nil {
			return err
		}
	}

	st := a.store(dir)
	doc, err := st.ReadDocument()
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	printPreview(a.out, st.Path, doc)

	set, err := st.Load()
	if err != nil {
		return fmt.Errorf("loading metadata: %w", err)
	}
	if set.Total() == 0 {
		fmt.Fprintln(a.out, "No metadata to restore.")
		return nil
	}
	printSummary(a.out, set)

	if !cmd.Yes {
		ok, err := a.prompt.confirm("Restore this metadata into the photos? Type 'yes' to continue: ")
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			fmt.Fprintln(a.out, "Restore cancelled.")
			return nil
		}
	}

	r := &restore.Restorer{Log: a.log, UseSavedBlock: a.cfg.UseSavedBlock}
	if a.cfg.SetCreationTime {
		r.Clock = a.capability()
	}
	report, err := r.Run(set, target)
	if err != nil {
		return fmt.Errorf("restoring metadata: %w", err)
	}
	printReport(a.out, target, report)
	return nil
}

func (a *app) fixDates(cmd *fixDatesCmd) error {
	path := cmd.Document
	if path == "" {
		path = a.cfg.DocumentName
	}
	st := store.New(path, a.log)
	doc, err := st.ReadDocument()
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	fmt.Fprintf(a.out, "Photos in document: %d\n", doc.TotalPhotos)

	corrections := fixdates.Fixer{Sentinel: a.cfg.SentinelDate}.Apply(doc)
	for _, c := range corrections {
		fmt.Fprintf(a.out, "Corrected %s\n", c)
	}

	if cmd.Output != "" {
		st = store.New(cmd.Output, a.log)
	}
	if err := st.WriteDocument(doc); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d dates corrected, saved to %s\n", len(corrections), st.Path)
	return nil
}

// inspect extracts a single photo, pushes it through a temporary document and
// checks that it comes back unchanged.
func (a *app) inspect(cmd *inspectCmd) error {
	rec, err := a.extractor().File(cmd.Photo)
	if err != nil {
		a.log.Warn().Err(err).Msg("extraction degraded")
	}
	fmt.Fprintln(a.out, "Extracted:")
	printRecord(a.out, rec)

	tmp, err := os.MkdirTemp("", "photosidecar-inspect-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	st := a.store(tmp)
	set := photo.NewSet()
	set.Photos[cmd.Photo] = rec
	if err := st.Save(set); err != nil {
		return err
	}
	loaded, err := st.Load()
	if err != nil {
		return fmt.Errorf("reloading metadata: %w", err)
	}
	back, ok := loaded.Photos[cmd.Photo]
	if !ok {
		return fmt.Errorf("%s missing from reloaded document", cmd.Photo)
	}
	fmt.Fprintln(a.out, "Reloaded:")
	printRecord(a.out, back)

	if diff := compareRecords(rec, back); diff != "" {
		return fmt.Errorf("round trip changed the record: %s", diff)
	}
	fmt.Fprintln(a.out, "Round trip OK")
	return nil
}

func compareRecords(a, b *photo.Record) string {
	switch {
	case a.Name != b.Name:
		return "name"
	case !sameString(a.Date, b.Date) || !sameString(a.Time, b.Time):
		return "date"
	case !sameFloat(a.Latitude, b.Latitude) || !sameFloat(a.Longitude, b.Longitude):
		return "coordinates"
	case !sameString(a.Location, b.Location):
		return "location"
	case a.Error != b.Error:
		return "error"
	case !exifblock.Equal(a.Raw, b.Raw):
		return "EXIF block"
	}
	return ""
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
