package exifblock

import (
	"encoding/binary"
	"fmt"
	"sort"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// Dump serialises the block into an APP1 payload: the "Exif\0\0" prefix
// followed by a TIFF structure holding IFD0, the Exif and GPS sub-IFDs, IFD1
// and the thumbnail.
func (b *Block) Dump() ([]byte, error) {
	ib, err := b.builder()
	if err != nil {
		return nil, err
	}
	return encode(ib)
}

func encode(ib *exif.IfdBuilder) ([]byte, error) {
	data, err := exif.NewIfdByteEncoder().EncodeToExif(ib)
	if err != nil {
		return nil, fmt.Errorf("encoding EXIF: %w", err)
	}
	return append(append([]byte(nil), exifHeader...), data...), nil
}

// builder assembles the IFD chain for the block. Tags go in ascending order,
// with the sub-IFD pointers slotted in at their own tag ids.
func (b *Block) builder() (*exif.IfdBuilder, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	order := b.order()

	primary := b.withoutStructural(Primary)
	capture := b.withoutStructural(Capture)
	gps := b.withoutStructural(GPS)
	first := b.withoutStructural(Thumb)
	for _, sec := range []map[uint16]Entry{primary, capture, gps, first} {
		if err := validate(sec); err != nil {
			return nil, err
		}
	}

	children := map[uint16]*exif.IfdBuilder{}
	for _, sub := range []struct {
		pointer uint16
		entries map[uint16]Entry
		ii      *exifcommon.IfdIdentity
	}{
		{tagExifPointer, capture, exifcommon.IfdExifStandardIfdIdentity},
		{tagGPSPointer, gps, exifcommon.IfdGpsInfoStandardIfdIdentity},
	} {
		if len(sub.entries) == 0 {
			continue
		}
		ib := exif.NewIfdBuilder(reg.mapping, reg.tags, sub.ii, order)
		if err := addEntries(ib, sub.entries, nil, order); err != nil {
			return nil, err
		}
		children[sub.pointer] = ib
	}

	root := exif.NewIfdBuilder(reg.mapping, reg.tags, exifcommon.IfdStandardIfdIdentity, order)
	if err := addEntries(root, primary, children, order); err != nil {
		return nil, err
	}

	if len(first) > 0 || len(b.Thumbnail) > 0 {
		ib := exif.NewIfdBuilder(reg.mapping, reg.tags, exifcommon.IfdStandardIfdIdentity, order)
		if err := addEntries(ib, first, nil, order); err != nil {
			return nil, err
		}
		if len(b.Thumbnail) > 0 {
			if err := ib.SetThumbnail(append([]byte(nil), b.Thumbnail...)); err != nil {
				return nil, fmt.Errorf("attaching thumbnail: %w", err)
			}
		}
		if err := root.SetNextIb(ib); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func addEntries(ib *exif.IfdBuilder, sec map[uint16]Entry, children map[uint16]*exif.IfdBuilder, order binary.ByteOrder) error {
	tags := make([]uint16, 0, len(sec)+len(children))
	for tag := range sec {
		tags = append(tags, tag)
	}
	for tag := range children {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	ifdPath := ib.IfdIdentity().UnindexedString()
	for _, tag := range tags {
		if child, ok := children[tag]; ok {
			if err := ib.AddChildIb(child); err != nil {
				return fmt.Errorf("linking sub-IFD 0x%04x: %w", tag, err)
			}
			continue
		}
		e := sec[tag]
		value := exif.NewIfdBuilderTagValueFromBytes(append([]byte{}, e.Data...))
		bt := exif.NewBuilderTag(ifdPath, tag, exifcommon.TagTypePrimitive(e.Type), value, order)
		if err := ib.Add(bt); err != nil {
			return fmt.Errorf("tag 0x%04x: %w", tag, err)
		}
	}
	return nil
}

func (b *Block) withoutStructural(s Section) map[uint16]Entry {
	out := make(map[uint16]Entry, len(b.Sections[s]))
	for tag, e := range b.Sections[s] {
		switch {
		case s == Primary && (tag == tagExifPointer || tag == tagGPSPointer):
		case s == Capture && tag == tagInteropPointer:
		case s == Thumb && (tag == tagThumbOffset || tag == tagThumbLength):
		default:
			out[tag] = e
		}
	}
	return out
}

// validate rejects entries the encoder would miscount. SBYTE and SSHORT have
// no encoding in the codec.
func validate(sec map[uint16]Entry) error {
	for tag, e := range sec {
		size, ok := typeSizes[e.Type]
		if !ok || e.Type == TypeSByte || e.Type == TypeSShort {
			return fmt.Errorf("tag 0x%04x: type %d cannot be encoded", tag, e.Type)
		}
		if len(e.Data) != size*int(e.Count) {
			return fmt.Errorf("tag 0x%04x: %d bytes for %d values of type %d", tag, len(e.Data), e.Count, e.Type)
		}
	}
	return nil
}
