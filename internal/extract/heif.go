package extract

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/abema/go-mp4"
	"github.com/evanoberholster/imagemeta"
	"github.com/evanoberholster/imagemeta/exif2"

	"github.com/tonimelisma/photosidecar/internal/photo"
)

var heifBrands = map[string]bool{
	"heic": true,
	"heix": true,
	"heim": true,
	"heis": true,
	"hevc": true,
	"hevx": true,
	"mif1": true,
	"msf1": true,
}

// heif reads the capture date of a HEIF container. HEIF files yield no GPS
// position and no raw block.
func (e *Extractor) heif(path string, rec *photo.Record) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := checkBrand(f); err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	x, err := decodeSafe(f)
	if err != nil {
		return fmt.Errorf("decoding HEIF metadata: %w", err)
	}
	t := x.DateTimeOriginal()
	if t.IsZero() {
		t = x.ModifyDate()
	}
	if !t.IsZero() {
		rec.SetDateTime(t)
	}
	return nil
}

// checkBrand reads the ftyp box and requires a HEIF major or compatible brand.
func checkBrand(r io.ReadSeeker) error {
	boxes, err := mp4.ExtractBoxWithPayload(r, nil, mp4.BoxPath{mp4.BoxTypeFtyp()})
	if err != nil {
		return fmt.Errorf("reading ftyp box: %w", err)
	}
	if len(boxes) == 0 {
		return errors.New("no ftyp box")
	}
	ftyp, ok := boxes[0].Payload.(*mp4.Ftyp)
	if !ok {
		return errors.New("unexpected ftyp payload")
	}
	if heifBrands[string(ftyp.MajorBrand[:])] {
		return nil
	}
	for _, b := range ftyp.CompatibleBrands {
		if heifBrands[string(b.CompatibleBrand[:])] {
			return nil
		}
	}
	return fmt.Errorf("brand %q is not HEIF", string(ftyp.MajorBrand[:]))
}

// decodeSafe turns decoder panics on malformed input into errors.
func decodeSafe(r io.ReadSeeker) (x exif2.Exif, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decoder panic: %v", p)
		}
	}()
	return imagemeta.Decode(r)
}
