package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tonimelisma/photosidecar/internal/photo"
	"github.com/tonimelisma/photosidecar/internal/restore"
	"github.com/tonimelisma/photosidecar/internal/store"
)

func TestHumanReadableSize(t *testing.T) {
	testCases := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tc := range testCases {
		if got := humanReadableSize(tc.size); got != tc.expected {
			t.Errorf("humanReadableSize(%d) = %s, expected %s", tc.size, got, tc.expected)
		}
	}
}

func TestHumanReadableDuration(t *testing.T) {
	testCases := []struct {
		d        time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250ms"},
		{time.Second, "1s"},
		{61 * time.Second, "1m1s"},
		{2 * time.Minute, "2m"},
		{90 * time.Minute, "90m"},
	}
	for _, tc := range testCases {
		if got := humanReadableDuration(tc.d); got != tc.expected {
			t.Errorf("humanReadableDuration(%v) = %s, expected %s", tc.d, got, tc.expected)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	set := photo.NewSet()
	a := photo.NewRecord("a.jpg")
	a.SetDateTime(time.Date(2021, 7, 11, 6, 58, 21, 0, time.Local))
	a.SetCoordinates(48.85837, 2.29448, "")
	set.Photos["/p/a.jpg"] = a
	b := photo.NewRecord("b.jpg")
	b.Error = "reading EXIF: broken"
	set.Photos["/p/b.jpg"] = b

	var buf bytes.Buffer
	printSummary(&buf, set)
	out := buf.String()
	for _, want := range []string{
		"2 photos",
		"Date: 11/07/2021 at 06:58:21",
		"GPS: 48.8584, 2.2945",
		"Map: https://www.google.com/maps?q=48.85837,2.29448",
		"Date: not found at not found",
		"No GPS",
		"Error: reading EXIF: broken",
		"Photos with date: 1/2",
		"Photos with GPS: 1/2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in summary, got:\n%s", want, out)
		}
	}
}

func TestPrintPreviewSample(t *testing.T) {
	doc := &store.Document{ExtractionDate: "17/10/2026 10:00:00", TotalPhotos: 5, Photos: map[string]*store.Entry{}}
	for _, name := range []string{"e.jpg", "d.jpg", "c.jpg", "b.jpg", "a.jpg"} {
		doc.Photos["/p/"+name] = &store.Entry{Name: name}
	}
	var buf bytes.Buffer
	printPreview(&buf, "/p/metadata_simple.json", doc)
	out := buf.String()
	if !strings.Contains(out, "Extraction date: 17/10/2026 10:00:00") || !strings.Contains(out, "Total photos: 5") {
		t.Errorf("Expected document header, got:\n%s", out)
	}
	if !strings.Contains(out, "c.jpg") || strings.Contains(out, "d.jpg") {
		t.Errorf("Expected a sample of the first three records, got:\n%s", out)
	}
	if !strings.Contains(out, "GPS: N/A, N/A") {
		t.Errorf("Expected N/A coordinates, got:\n%s", out)
	}
}

func TestPrintReport(t *testing.T) {
	report := restore.Report{
		Results: []restore.Result{
			{Path: "/p/a.jpg", Target: "/t/a.jpg", State: restore.Restored, Warnings: []string{"2 files named a.jpg, restored into the first"}},
			{Path: "/p/b.jpg", Target: "/t/b.jpg", State: restore.Restored, Unchanged: true, CreationTimeUnsupported: true},
			{Path: "/p/c.jpg", State: restore.SkippedNoMatch},
			{Path: "/p/d.jpg", Target: "/t/d.jpg", State: restore.FailedRestore, Err: errors.New("writing EXIF block: not a JPEG file")},
		},
		Restored: 2,
		Skipped:  1,
		Failed:   1,
	}
	var buf bytes.Buffer
	printReport(&buf, "/t", report)
	out := buf.String()
	for _, want := range []string{
		"a.jpg -> /t/a.jpg",
		"warning: 2 files named a.jpg",
		"b.jpg (already up to date)",
		"d.jpg: writing EXIF block: not a JPEG file",
		"Restored: 2",
		"No matching file: 1",
		"Failed: 1",
		"Creation time not supported on this platform for 1 files",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in report, got:\n%s", want, out)
		}
	}
}
