// Package fixdates repairs capture dates in a saved document from the
// timestamps embedded in camera and messenger file names.
package fixdates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tonimelisma/photosidecar/internal/store"
)

const DefaultSentinel = "21/05/2025"

var (
	// 20210711_065821.jpg
	cameraPattern = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)
	// IMG-20210711-WA0003.jpg
	messengerPattern = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})-WA`)
)

// FromFilename extracts a DD/MM/YYYY date and, when the name carries one, an
// HH:MM:SS time. ok is false when no known pattern matches.
func FromFilename(name string) (date, clock string, ok bool) {
	if m := cameraPattern.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s/%s/%s", m[3], m[2], m[1]), fmt.Sprintf("%s:%s:%s", m[4], m[5], m[6]), true
	}
	if m := messengerPattern.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s/%s/%s", m[3], m[2], m[1]), "", true
	}
	return "", "", false
}

// Correction describes one rewritten record.
type Correction struct {
	Path string
	Name string
	Date string
	Time string
}

func (c Correction) String() string {
	if c.Time == "" {
		return fmt.Sprintf("%s -> %s", c.Name, c.Date)
	}
	return fmt.Sprintf("%s -> %s %s", c.Name, c.Date, c.Time)
}

// Fixer rewrites records whose date contains Sentinel, a value known to be
// wrong (typically the day the photos were copied).
type Fixer struct {
	Sentinel string
}

func (f Fixer) sentinel() string {
	if f.Sentinel == "" {
		return DefaultSentinel
	}
	return f.Sentinel
}

// Apply corrects doc in place and returns the corrections in path order. A
// time is only replaced when the file name carries one.
func (f Fixer) Apply(doc *store.Document) []Correction {
	paths := make([]string, 0, len(doc.Photos))
	for p := range doc.Photos {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []Correction
	for _, path := range paths {
		e := doc.Photos[path]
		if e == nil || e.Date == nil || !strings.Contains(*e.Date, f.sentinel()) {
			continue
		}
		date, clock, ok := FromFilename(e.Name)
		if !ok {
			continue
		}
		e.Date = &date
		if clock != "" {
			e.Time = &clock
		}

		c := Correction{Path: path, Name: e.Name, Date: date}
		if e.Time != nil {
			c.Time = *e.Time
		}
		out = append(out, c)
	}
	return out
}
