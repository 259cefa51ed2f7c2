// Package photo defines the per-photo record shared by extraction,
// persistence and restoration.
package photo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tonimelisma/photosidecar/internal/exifblock"
)

const (
	DateLayout     = "02/01/2006"
	TimeLayout     = "15:04:05"
	ExifLayout     = "2006:01:02 15:04:05"
	DefaultMapLink = "https://www.google.com/maps?q=%s,%s"
)

// Record is the essential metadata of one photo.
type Record struct {
	Name      string
	Date      *string
	Time      *string
	Latitude  *float64
	Longitude *float64
	Location  *string
	Raw       *exifblock.Block
	Error     string
}

// NewRecord returns an empty record for the file name.
func NewRecord(name string) *Record {
	return &Record{Name: name}
}

// SetDateTime stores t as a date and a time of day.
func (r *Record) SetDateTime(t time.Time) {
	date := t.Format(DateLayout)
	clock := t.Format(TimeLayout)
	r.Date = &date
	r.Time = &clock
}

// SetRawDateTime stores an unparsable tag value in both fields so the
// information is not lost.
func (r *Record) SetRawDateTime(raw string) {
	date, clock := raw, raw
	r.Date = &date
	r.Time = &clock
}

// HasDateTime reports whether both date and time are set.
func (r *Record) HasDateTime() bool {
	return r.Date != nil && r.Time != nil && *r.Date != "" && *r.Time != ""
}

// HasGPS reports whether both coordinates are set.
func (r *Record) HasGPS() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SetCoordinates stores both coordinates and derives the map link from
// linkTemplate, which takes the latitude and longitude as two %s verbs.
func (r *Record) SetCoordinates(lat, lon float64, linkTemplate string) {
	if linkTemplate == "" {
		linkTemplate = DefaultMapLink
	}
	link := fmt.Sprintf(linkTemplate, formatFloat(lat), formatFloat(lon))
	r.Latitude = &lat
	r.Longitude = &lon
	r.Location = &link
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExifDateTime converts the stored DD/MM/YYYY and HH:MM:SS pair into the
// EXIF "YYYY:MM:DD HH:MM:SS" form. Out-of-range fields are an error.
func (r *Record) ExifDateTime() (string, error) {
	t, err := r.Timestamp(time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(ExifLayout), nil
}

// Timestamp interprets the stored date and time in loc.
func (r *Record) Timestamp(loc *time.Location) (time.Time, error) {
	if !r.HasDateTime() {
		return time.Time{}, fmt.Errorf("record has no date and time")
	}
	dateParts := strings.Split(*r.Date, "/")
	timeParts := strings.Split(*r.Time, ":")
	if len(dateParts) != 3 || len(timeParts) != 3 {
		return time.Time{}, fmt.Errorf("cannot interpret %q %q as a date and time", *r.Date, *r.Time)
	}

	var n [6]int
	for i, s := range append(dateParts, timeParts...) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot interpret %q %q as a date and time: %w", *r.Date, *r.Time, err)
		}
		n[i] = v
	}
	t := time.Date(n[2], time.Month(n[1]), n[0], n[3], n[4], n[5], 0, loc)
	if t.Year() != n[2] || int(t.Month()) != n[1] || t.Day() != n[0] ||
		t.Hour() != n[3] || t.Minute() != n[4] || t.Second() != n[5] {
		return time.Time{}, fmt.Errorf("%s %s is not a valid date and time", *r.Date, *r.Time)
	}
	return t, nil
}

// MetadataSet is the collection persisted in one side-car document, keyed by
// source file path.
type MetadataSet struct {
	ExtractionDate string
	Photos         map[string]*Record
}

// NewSet returns an empty set.
func NewSet() *MetadataSet {
	return &MetadataSet{Photos: make(map[string]*Record)}
}

// Total is the number of photos in the set.
func (s *MetadataSet) Total() int {
	return len(s.Photos)
}

// Paths returns the source paths in lexical order.
func (s *MetadataSet) Paths() []string {
	paths := make([]string, 0, len(s.Photos))
	for p := range s.Photos {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Stats counts photos carrying a date and photos carrying GPS coordinates.
type Stats struct {
	Total    int
	WithDate int
	WithGPS  int
}

func (s *MetadataSet) Stats() Stats {
	st := Stats{Total: s.Total()}
	for _, r := range s.Photos {
		if r.Date != nil && *r.Date != "" {
			st.WithDate++
		}
		if r.HasGPS() {
			st.WithGPS++
		}
	}
	return st
}
