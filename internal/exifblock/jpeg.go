package exifblock

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

const maxSegmentData = 0xFFFF - 2

func parseJPEG(data []byte) (*jpegstructure.SegmentList, error) {
	if !isJPEG(data) {
		return nil, ErrNotJPEG
	}
	mc, err := jpegstructure.NewJpegMediaParser().ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing JPEG segments: %w", err)
	}
	sl, ok := mc.(*jpegstructure.SegmentList)
	if !ok {
		return nil, ErrNotJPEG
	}
	return sl, nil
}

func findPayload(data []byte) ([]byte, error) {
	sl, err := parseJPEG(data)
	if err != nil {
		return nil, err
	}
	for _, s := range sl.Segments() {
		if s.IsExif() {
			return s.Data, nil
		}
	}
	return nil, ErrNoExif
}

// Payload returns the current APP1 EXIF payload of a JPEG file.
func Payload(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return findPayload(data)
}

// Fingerprint hashes a payload so callers can tell whether a rewrite would
// change anything.
func Fingerprint(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

// Insert writes b as the EXIF segment of the JPEG at path. An existing EXIF
// segment is replaced; otherwise a new one goes right after SOI. The segment
// holds exactly what Dump returns and image data is copied through unchanged.
func Insert(b *Block, path string) error {
	ib, err := b.builder()
	if err != nil {
		return err
	}
	payload, err := encode(ib)
	if err != nil {
		return err
	}
	if len(payload) > maxSegmentData {
		return fmt.Errorf("EXIF payload of %d bytes does not fit in one APP1 segment", len(payload))
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sl, err := parseJPEG(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := sl.SetExif(ib); err != nil {
		return fmt.Errorf("%s: replacing EXIF segment: %w", path, err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return fmt.Errorf("%s: writing segments: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), info.Mode().Perm())
}
