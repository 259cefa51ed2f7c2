package main

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonimelisma/photosidecar/internal/birthtime"
	"github.com/tonimelisma/photosidecar/internal/exifblock"
	"github.com/tonimelisma/photosidecar/internal/fixdates"
	"github.com/tonimelisma/photosidecar/internal/photo"
	"github.com/tonimelisma/photosidecar/internal/store"
	"github.com/tonimelisma/photosidecar/internal/testutil"
)

var fileTime = time.Date(2020, 1, 2, 3, 4, 5, 0, time.Local)

func newTestApp(input string) (*app, *bytes.Buffer, *birthtime.Fixed) {
	var out bytes.Buffer
	clock := &birthtime.Fixed{Time: fileTime}
	return &app{
		cfg: config{
			DocumentName:    store.DefaultName,
			SentinelDate:    fixdates.DefaultSentinel,
			SetCreationTime: true,
			MapURL:          photo.DefaultMapLink,
		},
		log:    zerolog.Nop(),
		prompt: &prompter{in: bufio.NewReader(strings.NewReader(input)), out: &out},
		out:    &out,
		clock:  clock,
	}, &out, clock
}

// writeSourcePhotos creates a tagged and an untagged photo under dir.
func writeSourcePhotos(t *testing.T, dir string) {
	t.Helper()
	testutil.WriteJPEG(t, filepath.Join(dir, "tagged.jpg"), testutil.CaptureBlock("2021:07:11 06:58:21", true))
	testutil.WriteJPEG(t, filepath.Join(dir, "album", "plain.jpg"), nil)
}

func TestExtractThenRestore(t *testing.T) {
	src := t.TempDir()
	writeSourcePhotos(t, src)

	a, out, clock := newTestApp("yes\n")
	if err := a.extract(&extractCmd{Dir: src}); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, store.DefaultName)); err != nil {
		t.Fatalf("Expected metadata document: %v", err)
	}
	if !strings.Contains(out.String(), "Photos with GPS: 1/2") {
		t.Errorf("Expected statistics in output, got:\n%s", out.String())
	}

	// The copies lost their metadata and were reorganised.
	target := t.TempDir()
	testutil.WriteJPEG(t, filepath.Join(target, "2021", "tagged.jpg"), nil)
	testutil.WriteJPEG(t, filepath.Join(target, "plain.jpg"), nil)

	if err := a.restore(&restoreCmd{Dir: src, Target: target}); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restored: 2") {
		t.Errorf("Expected two restored photos, got:\n%s", out.String())
	}

	tagged, err := exifblock.LoadFile(filepath.Join(target, "2021", "tagged.jpg"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got, _ := tagged.ASCII(exifblock.Capture, exifblock.TagDateTimeOriginal); got != "2021:07:11 06:58:21" {
		t.Errorf("Expected restored capture date, got %q", got)
	}
	if !tagged.Has(exifblock.GPS, exifblock.TagGPSLatitude) {
		t.Error("Expected restored GPS position")
	}

	plain, err := exifblock.LoadFile(filepath.Join(target, "plain.jpg"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got, _ := plain.ASCII(exifblock.Primary, exifblock.TagDateTime); got != fileTime.Format(photo.ExifLayout) {
		t.Errorf("Expected file creation time as capture date, got %q", got)
	}
	if len(clock.Applied) != 2 {
		t.Errorf("Expected creation time set on 2 files, got %d", len(clock.Applied))
	}
}

func TestRestoreCancelled(t *testing.T) {
	src := t.TempDir()
	writeSourcePhotos(t, src)
	a, out, _ := newTestApp("non\n")
	if err := a.extract(&extractCmd{Dir: src}); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	target := t.TempDir()
	testutil.WriteJPEG(t, filepath.Join(target, "tagged.jpg"), nil)
	if err := a.restore(&restoreCmd{Dir: src, Target: target}); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("Expected cancellation message, got:\n%s", out.String())
	}
	if _, err := exifblock.LoadFile(filepath.Join(target, "tagged.jpg")); !errors.Is(err, exifblock.ErrNoExif) {
		t.Errorf("Expected target untouched, got %v", err)
	}
}

func TestRestoreWithoutDocument(t *testing.T) {
	a, _, _ := newTestApp("")
	err := a.restore(&restoreCmd{Dir: t.TempDir(), Yes: true})
	if !errors.Is(err, store.ErrNoDocument) {
		t.Errorf("Expected ErrNoDocument, got %v", err)
	}
}

func TestExtractRequiresDirectory(t *testing.T) {
	a, _, _ := newTestApp("")
	if err := a.extract(&extractCmd{}); err == nil {
		t.Error("Expected error without a directory on a non-interactive input, got nil")
	}
	if err := a.extract(&extractCmd{Dir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("Expected error for missing directory, got nil")
	}
}

func TestSummaryCommand(t *testing.T) {
	src := t.TempDir()
	writeSourcePhotos(t, src)
	a, out, _ := newTestApp("")
	if err := a.extract(&extractCmd{Dir: src}); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	out.Reset()
	if err := a.summary(&summaryCmd{Dir: src}); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	for _, want := range []string{"2 photos", "tagged.jpg", "plain.jpg", "Date: 11/07/2021 at 06:58:21"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in summary, got:\n%s", want, out.String())
		}
	}
}

func TestFixDatesCommand(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, store.DefaultName), zerolog.Nop())
	sentinel, clock := fixdates.DefaultSentinel, "12:00:00"
	doc := &store.Document{Photos: map[string]*store.Entry{
		"/p/20210711_065821.jpg": {Name: "20210711_065821.jpg", Date: &sentinel, Time: &clock},
	}}
	if err := st.WriteDocument(doc); err != nil {
		t.Fatalf("WriteDocument failed: %v", err)
	}

	a, out, _ := newTestApp("")
	output := filepath.Join(dir, "corrected.json")
	if err := a.fixDates(&fixDatesCmd{Document: st.Path, Output: output}); err != nil {
		t.Fatalf("fixDates failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 dates corrected") {
		t.Errorf("Expected correction count, got:\n%s", out.String())
	}

	fixed, err := store.New(output, zerolog.Nop()).ReadDocument()
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	e := fixed.Photos["/p/20210711_065821.jpg"]
	if *e.Date != "11/07/2021" || *e.Time != "06:58:21" {
		t.Errorf("Expected 11/07/2021 06:58:21, got %s %s", *e.Date, *e.Time)
	}

	original, err := st.ReadDocument()
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if *original.Photos["/p/20210711_065821.jpg"].Date != sentinel {
		t.Error("Expected the input document to be left alone when --output is given")
	}
}

func TestInspectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagged.jpg")
	testutil.WriteJPEG(t, path, testutil.CaptureBlock("2021:07:11 06:58:21", true))

	a, out, _ := newTestApp("")
	if err := a.inspect(&inspectCmd{Photo: path}); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out.String(), "Round trip OK") {
		t.Errorf("Expected round trip confirmation, got:\n%s", out.String())
	}
}
