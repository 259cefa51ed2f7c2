// Package exifblock holds the structured form of a photo's EXIF data and
// converts it to and from the raw APP1 payload embedded in JPEG files.
//
// A Block keeps four sections (primary image, capture, GPS, thumbnail) as
// maps from tag id to raw entry, plus the embedded thumbnail bytes. Entry
// payloads are kept verbatim in the block's byte order; go-exif does the IFD
// walking and encoding and go-jpeg-image-structure the segment splicing.
package exifblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/tonimelisma/photosidecar/internal/coords"
)

type Section int

const (
	Primary Section = iota // IFD0
	Capture                // Exif sub-IFD
	GPS                    // GPS sub-IFD
	Thumb                  // IFD1
	sectionCount
)

func (s Section) String() string {
	switch s {
	case Primary:
		return "0th"
	case Capture:
		return "Exif"
	case GPS:
		return "GPS"
	case Thumb:
		return "1st"
	}
	return "unknown"
}

// Tags read or written by this module.
const (
	TagDateTime          uint16 = 0x0132
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004

	TagGPSVersionID    uint16 = 0x0000
	TagGPSLatitudeRef  uint16 = 0x0001
	TagGPSLatitude     uint16 = 0x0002
	TagGPSLongitudeRef uint16 = 0x0003
	TagGPSLongitude    uint16 = 0x0004
)

// Structural tags; rebuilt on every dump and never kept in a section.
const (
	tagExifPointer    uint16 = 0x8769
	tagGPSPointer     uint16 = 0x8825
	tagInteropPointer uint16 = 0xA005
	tagThumbOffset    uint16 = 0x0201
	tagThumbLength    uint16 = 0x0202
)

// TIFF field types.
const (
	TypeByte      uint16 = 1
	TypeASCII     uint16 = 2
	TypeShort     uint16 = 3
	TypeLong      uint16 = 4
	TypeRational  uint16 = 5
	TypeSByte     uint16 = 6
	TypeUndefined uint16 = 7
	TypeSShort    uint16 = 8
	TypeSLong     uint16 = 9
	TypeSRational uint16 = 10
	TypeFloat     uint16 = 11
	TypeDouble    uint16 = 12
)

var typeSizes = map[uint16]int{
	TypeByte: 1, TypeASCII: 1, TypeShort: 2, TypeLong: 4, TypeRational: 8,
	TypeSByte: 1, TypeUndefined: 1, TypeSShort: 2, TypeSLong: 4,
	TypeSRational: 8, TypeFloat: 4, TypeDouble: 8,
}

var (
	ErrNoExif            = errors.New("no EXIF data")
	ErrNotJPEG           = errors.New("not a JPEG file")
	ErrUnsupportedFormat = errors.New("unsupported container format")
)

// Entry is one tag value. Data is Count values of Type in the owning block's
// byte order.
type Entry struct {
	Type  uint16
	Count uint32
	Data  []byte
}

// Block is the structured EXIF dictionary of one photo.
type Block struct {
	Order     binary.ByteOrder
	Sections  [sectionCount]map[uint16]Entry
	Thumbnail []byte
}

// NewSkeleton returns an empty block with all four sections and no thumbnail.
func NewSkeleton() *Block {
	b := &Block{Order: binary.BigEndian}
	for i := range b.Sections {
		b.Sections[i] = map[uint16]Entry{}
	}
	return b
}

func (b *Block) section(s Section) map[uint16]Entry {
	if b.Sections[s] == nil {
		b.Sections[s] = map[uint16]Entry{}
	}
	return b.Sections[s]
}

func (b *Block) order() binary.ByteOrder {
	if b.Order == nil {
		b.Order = binary.BigEndian
	}
	return b.Order
}

// Len returns the number of tags in a section.
func (b *Block) Len(s Section) int {
	return len(b.Sections[s])
}

// Has reports whether a tag is present.
func (b *Block) Has(s Section, tag uint16) bool {
	_, ok := b.Sections[s][tag]
	return ok
}

// Get returns the raw entry for a tag.
func (b *Block) Get(s Section, tag uint16) (Entry, bool) {
	e, ok := b.Sections[s][tag]
	return e, ok
}

// Set stores a raw entry.
func (b *Block) Set(s Section, tag uint16, e Entry) {
	b.section(s)[tag] = e
}

// ASCII returns a text tag up to its first NUL.
func (b *Block) ASCII(s Section, tag uint16) (string, bool) {
	e, ok := b.Sections[s][tag]
	if !ok || (e.Type != TypeASCII && e.Type != TypeUndefined && e.Type != TypeByte) {
		return "", false
	}
	data := e.Data
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data), true
}

// SetASCII stores a NUL-terminated text tag.
func (b *Block) SetASCII(s Section, tag uint16, value string) {
	data := append([]byte(value), 0)
	b.section(s)[tag] = Entry{Type: TypeASCII, Count: uint32(len(data)), Data: data}
}

// SetBytes stores a BYTE tag, as used by GPSVersionID.
func (b *Block) SetBytes(s Section, tag uint16, value []byte) {
	data := append([]byte(nil), value...)
	b.section(s)[tag] = Entry{Type: TypeByte, Count: uint32(len(data)), Data: data}
}

// SetRationals stores an unsigned RATIONAL tag.
func (b *Block) SetRationals(s Section, tag uint16, values []coords.Rational) {
	order := b.order()
	data := make([]byte, 8*len(values))
	for i, r := range values {
		order.PutUint32(data[i*8:], uint32(r.Num))
		order.PutUint32(data[i*8+4:], uint32(r.Den))
	}
	b.section(s)[tag] = Entry{Type: TypeRational, Count: uint32(len(values)), Data: data}
}

// Angles decodes a numeric tag into converter components. RATIONAL and
// SRATIONAL values become coords.Rational, every other numeric type becomes
// coords.Scalar.
func (b *Block) Angles(s Section, tag uint16) ([]coords.Angle, bool) {
	e, ok := b.Sections[s][tag]
	if !ok {
		return nil, false
	}
	size, known := typeSizes[e.Type]
	if !known || len(e.Data) < size*int(e.Count) {
		return nil, false
	}

	order := b.order()
	out := make([]coords.Angle, 0, e.Count)
	for i := 0; i < int(e.Count); i++ {
		p := e.Data[i*size:]
		switch e.Type {
		case TypeRational:
			out = append(out, coords.Rational{Num: int64(order.Uint32(p)), Den: int64(order.Uint32(p[4:]))})
		case TypeSRational:
			out = append(out, coords.Rational{Num: int64(int32(order.Uint32(p))), Den: int64(int32(order.Uint32(p[4:])))})
		case TypeByte, TypeUndefined:
			out = append(out, coords.Scalar(p[0]))
		case TypeSByte:
			out = append(out, coords.Scalar(int8(p[0])))
		case TypeShort:
			out = append(out, coords.Scalar(order.Uint16(p)))
		case TypeSShort:
			out = append(out, coords.Scalar(int16(order.Uint16(p))))
		case TypeLong:
			out = append(out, coords.Scalar(order.Uint32(p)))
		case TypeSLong:
			out = append(out, coords.Scalar(int32(order.Uint32(p))))
		case TypeFloat:
			out = append(out, coords.Scalar(math.Float32frombits(order.Uint32(p))))
		case TypeDouble:
			out = append(out, coords.Scalar(math.Float64frombits(order.Uint64(p))))
		default:
			return nil, false
		}
	}
	return out, true
}

// Clone returns a deep copy.
func (b *Block) Clone() *Block {
	c := &Block{Order: b.Order}
	for i, sec := range b.Sections {
		c.Sections[i] = make(map[uint16]Entry, len(sec))
		for tag, e := range sec {
			c.Sections[i][tag] = Entry{Type: e.Type, Count: e.Count, Data: append([]byte(nil), e.Data...)}
		}
	}
	if b.Thumbnail != nil {
		c.Thumbnail = append([]byte(nil), b.Thumbnail...)
	}
	return c
}

// Equal reports whether two blocks hold the same tags with the same values
// and the same thumbnail.
func Equal(a, b *Block) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.order() != b.order() {
		return false
	}
	for i := range a.Sections {
		if len(a.Sections[i]) != len(b.Sections[i]) {
			return false
		}
		for tag, ea := range a.Sections[i] {
			eb, ok := b.Sections[i][tag]
			if !ok || ea.Type != eb.Type || ea.Count != eb.Count || !bytes.Equal(ea.Data, eb.Data) {
				return false
			}
		}
	}
	return bytes.Equal(a.Thumbnail, b.Thumbnail)
}
