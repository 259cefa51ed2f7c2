// Package store persists a photo.MetadataSet as a JSON side-car document.
// The structured EXIF block of each record travels as base64 text next to
// the typed fields.
package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonimelisma/photosidecar/internal/exifblock"
	"github.com/tonimelisma/photosidecar/internal/photo"
)

const (
	DefaultName = "metadata_simple.json"
	StampLayout = "02/01/2006 15:04:05"

	workInProgressSuffix = ".wip"
)

var ErrNoDocument = errors.New("metadata document not found")

// Document is the wire form of a metadata set.
type Document struct {
	ExtractionDate string            `json:"extraction_date"`
	TotalPhotos    int               `json:"total_photos"`
	Photos         map[string]*Entry `json:"photos"`
}

// Entry is the wire form of one record.
type Entry struct {
	Name      string   `json:"nom"`
	Date      *string  `json:"date_creation"`
	Time      *string  `json:"heure_creation"`
	Latitude  *float64 `json:"gps_latitude"`
	Longitude *float64 `json:"gps_longitude"`
	Location  *string  `json:"localisation"`
	RawB64    string   `json:"raw_metadata_b64,omitempty"`
	// Documents written by the earlier tool name the block field differently.
	LegacyRawB64 string `json:"raw_exif_b64,omitempty"`
	Error        string `json:"erreur,omitempty"`
}

// Store reads and writes one document.
type Store struct {
	Path string
	Now  func() time.Time
	Log  zerolog.Logger
}

// New returns a Store for the document at path.
func New(path string, log zerolog.Logger) *Store {
	return &Store{Path: path, Now: time.Now, Log: log}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Save writes set, re-stamping the extraction date. A block that cannot be
// dumped is left out of its record and logged.
func (s *Store) Save(set *photo.MetadataSet) error {
	doc := &Document{Photos: make(map[string]*Entry, len(set.Photos))}
	for path, rec := range set.Photos {
		e := &Entry{
			Name:      rec.Name,
			Date:      rec.Date,
			Time:      rec.Time,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Location:  rec.Location,
			Error:     rec.Error,
		}
		if rec.Raw != nil {
			payload, err := rec.Raw.Dump()
			if err != nil {
				s.Log.Warn().Err(err).Str("path", path).Msg("cannot serialise EXIF block, saving record without it")
			} else {
				e.RawB64 = base64.StdEncoding.EncodeToString(payload)
			}
		}
		doc.Photos[path] = e
	}
	if err := s.WriteDocument(doc); err != nil {
		return err
	}
	set.ExtractionDate = doc.ExtractionDate
	return nil
}

// Load reads the document back into a set. A record whose block cannot be
// decoded keeps its other fields and is logged.
func (s *Store) Load() (*photo.MetadataSet, error) {
	doc, err := s.ReadDocument()
	if err != nil {
		return nil, err
	}

	set := photo.NewSet()
	set.ExtractionDate = doc.ExtractionDate
	for path, e := range doc.Photos {
		if e == nil {
			continue
		}
		rec := &photo.Record{
			Name:      e.Name,
			Date:      e.Date,
			Time:      e.Time,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
			Location:  e.Location,
			Error:     e.Error,
		}
		if encoded := e.encodedBlock(); encoded != "" {
			block, err := decodeBlock(encoded)
			if err != nil {
				s.Log.Warn().Err(err).Str("path", path).Msg("cannot restore EXIF block from document")
			} else {
				rec.Raw = block
			}
		}
		set.Photos[path] = rec
	}
	return set, nil
}

func (e *Entry) encodedBlock() string {
	if e.RawB64 != "" {
		return e.RawB64
	}
	return e.LegacyRawB64
}

func decodeBlock(encoded string) (*exifblock.Block, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	return exifblock.LoadBytes(payload)
}

// ReadDocument returns the wire form without decoding any block.
func (s *Store) ReadDocument() (*Document, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Path, ErrNoDocument)
	}
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	if doc.Photos == nil {
		doc.Photos = map[string]*Entry{}
	}
	return &doc, nil
}

// WriteDocument re-stamps doc, recomputes its total and replaces the file
// through a temporary working copy.
func (s *Store) WriteDocument(doc *Document) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("saving %s: %w", s.Path, err)
		}
	}()

	if doc.Photos == nil {
		doc.Photos = map[string]*Entry{}
	}
	doc.ExtractionDate = s.now().Format(StampLayout)
	doc.TotalPhotos = len(doc.Photos)

	tempPath := s.Path + workInProgressSuffix
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, s.Path); err != nil {
		return fmt.Errorf("replacing document with working copy %s: %w", tempPath, err)
	}
	return nil
}
