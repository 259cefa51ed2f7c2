package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disiqueira/gotree/v3"

	"github.com/tonimelisma/photosidecar/internal/exifblock"
	"github.com/tonimelisma/photosidecar/internal/photo"
	"github.com/tonimelisma/photosidecar/internal/restore"
	"github.com/tonimelisma/photosidecar/internal/store"
)

const previewSample = 3

func orMissing(s *string) string {
	if s == nil || *s == "" {
		return "not found"
	}
	return *s
}

// recordNode adds one photo and its details under parent.
func recordNode(parent gotree.Tree, label string, rec *photo.Record) {
	node := parent.Add(label)
	node.Add(fmt.Sprintf("Date: %s at %s", orMissing(rec.Date), orMissing(rec.Time)))
	if rec.HasGPS() {
		node.Add(fmt.Sprintf("GPS: %.4f, %.4f", *rec.Latitude, *rec.Longitude))
	} else {
		node.Add("No GPS")
	}
	if rec.Location != nil {
		node.Add("Map: " + *rec.Location)
	}
	if rec.Error != "" {
		node.Add("Error: " + rec.Error)
	}
}

// printSummary shows every photo of set followed by statistics.
func printSummary(w io.Writer, set *photo.MetadataSet) {
	tree := gotree.New(fmt.Sprintf("%d photos", set.Total()))
	for _, path := range set.Paths() {
		rec := set.Photos[path]
		name := rec.Name
		if name == "" {
			name = filepath.Base(path)
		}
		recordNode(tree, name, rec)
	}
	fmt.Fprint(w, tree.Print())

	st := set.Stats()
	fmt.Fprintf(w, "\nStatistics:\n")
	fmt.Fprintf(w, "Photos with date: %d/%d\n", st.WithDate, st.Total)
	fmt.Fprintf(w, "Photos with GPS: %d/%d\n", st.WithGPS, st.Total)
}

// printRecord shows a single record, as used by inspect.
func printRecord(w io.Writer, rec *photo.Record) {
	tree := gotree.New(rec.Name)
	recordNode(tree, "fields", rec)
	if rec.Raw != nil {
		tree.Add(fmt.Sprintf("EXIF block: %d primary, %d capture, %d GPS tags", rec.Raw.Len(exifblock.Primary), rec.Raw.Len(exifblock.Capture), rec.Raw.Len(exifblock.GPS)))
	} else {
		tree.Add("EXIF block: none")
	}
	fmt.Fprint(w, tree.Print())
}

// printPreview shows the document header and a few sample records before a
// restore.
func printPreview(w io.Writer, path string, doc *store.Document) {
	fmt.Fprintf(w, "Reading metadata from %s\n", path)
	fmt.Fprintf(w, "Extraction date: %s\n", doc.ExtractionDate)
	fmt.Fprintf(w, "Total photos: %d\n", doc.TotalPhotos)

	paths := make([]string, 0, len(doc.Photos))
	for p := range doc.Photos {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if len(paths) > previewSample {
		paths = paths[:previewSample]
	}
	if len(paths) == 0 {
		return
	}

	tree := gotree.New("Sample")
	for _, p := range paths {
		e := doc.Photos[p]
		if e == nil {
			continue
		}
		node := tree.Add(e.Name)
		node.Add(fmt.Sprintf("Date: %s", orMissing(e.Date)))
		node.Add(fmt.Sprintf("Time: %s", orMissing(e.Time)))
		node.Add(fmt.Sprintf("GPS: %s, %s", floatOrNA(e.Latitude), floatOrNA(e.Longitude)))
		node.Add("Path: " + p)
		if e.Error != "" {
			node.Add("Error: " + e.Error)
		}
	}
	fmt.Fprint(w, tree.Print())
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", *v)
}

// printReport shows the outcome of a restore grouped by state.
func printReport(w io.Writer, target string, report restore.Report) {
	tree := gotree.New("Restore into " + target)
	groups := map[restore.State]gotree.Tree{}
	for _, state := range []restore.State{restore.Restored, restore.SkippedNoMatch, restore.FailedRestore} {
		groups[state] = tree.Add(strings.ToUpper(state.String()[:1]) + state.String()[1:])
	}

	unsupported := 0
	for _, res := range report.Results {
		label := filepath.Base(res.Path)
		switch {
		case res.State == restore.FailedRestore:
			label += ": " + res.Err.Error()
		case res.Unchanged:
			label += " (already up to date)"
		case res.Target != "":
			label += " -> " + res.Target
		}
		node := groups[res.State].Add(label)
		for _, warning := range res.Warnings {
			node.Add("warning: " + warning)
		}
		if res.CreationTimeUnsupported {
			unsupported++
		}
	}
	fmt.Fprint(w, tree.Print())

	fmt.Fprintf(w, "\nRestore summary:\n")
	fmt.Fprintf(w, "Total records: %d\n", len(report.Results))
	fmt.Fprintf(w, "Restored: %d\n", report.Restored)
	fmt.Fprintf(w, "No matching file: %d\n", report.Skipped)
	fmt.Fprintf(w, "Failed: %d\n", report.Failed)
	if unsupported > 0 {
		fmt.Fprintf(w, "Creation time not supported on this platform for %d files\n", unsupported)
	}
}

func humanReadableSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func humanReadableDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	parts := []string{}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}
