package exifblock

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

var exifHeader = []byte("Exif\x00\x00")

type registry struct {
	mapping *exifcommon.IfdMapping
	tags    *exif.TagIndex
}

// loadRegistry builds the IFD mapping and tag index once. Universal search
// keeps tags that sit in an unexpected IFD or carry an unexpected type.
var loadRegistry = sync.OnceValues(func() (*registry, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("loading IFD mapping: %w", err)
	}
	ti := exif.NewTagIndex()
	if err := exif.LoadStandardTags(ti); err != nil {
		return nil, fmt.Errorf("loading tag index: %w", err)
	}
	ti.SetUniversalSearch(true)
	return &registry{mapping: im, tags: ti}, nil
})

// LoadFile reads the EXIF block of a JPEG or TIFF file. It returns ErrNoExif
// when a JPEG carries no EXIF segment.
func LoadFile(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch {
	case isTIFF(data):
		return LoadBytes(data)
	case isJPEG(data):
		payload, err := findPayload(data)
		if err != nil {
			return nil, err
		}
		return LoadBytes(payload)
	}
	return nil, ErrUnsupportedFormat
}

// LoadBytes parses a raw EXIF payload, with or without the "Exif\0\0" APP1
// prefix. Tags the tag index does not know, and UNDEFINED tags without a
// codec, are dropped.
func LoadBytes(data []byte) (*Block, error) {
	data = bytes.TrimPrefix(data, exifHeader)
	if !isTIFF(data) {
		return nil, fmt.Errorf("missing TIFF header: %w", ErrNoExif)
	}

	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	_, index, err := exif.Collect(reg.mapping, reg.tags, data)
	if err != nil {
		return nil, fmt.Errorf("decoding TIFF structure: %w", err)
	}
	root := index.RootIfd
	if root == nil {
		return nil, ErrNoExif
	}

	b := &Block{Order: root.ByteOrder()}
	for i := range b.Sections {
		b.Sections[i] = map[uint16]Entry{}
	}

	if err := b.absorb(Primary, root); err != nil {
		return nil, err
	}
	if first := root.NextIfd(); first != nil {
		if err := b.absorb(Thumb, first); err != nil {
			return nil, err
		}
		if thumb, err := first.Thumbnail(); err == nil && len(thumb) > 0 {
			b.Thumbnail = append([]byte(nil), thumb...)
		}
	}
	return b, nil
}

// absorb copies the tags of ifd into section s, descending into the Exif and
// GPS sub-IFDs of the primary directory.
func (b *Block) absorb(s Section, ifd *exif.Ifd) error {
	for _, ite := range ifd.Entries() {
		if ite.IsThumbnailOffset() || ite.IsThumbnailSize() {
			continue
		}

		if ite.ChildIfdPath() != "" {
			if s != Primary {
				continue
			}
			var target Section
			switch ite.TagId() {
			case tagExifPointer:
				target = Capture
			case tagGPSPointer:
				target = GPS
			default:
				continue
			}
			child := childIfd(ifd, ite.TagId())
			if child == nil {
				return fmt.Errorf("reading %v sub-IFD: pointer 0x%04x has no directory", target, ite.TagId())
			}
			if err := b.absorb(target, child); err != nil {
				return fmt.Errorf("reading %v sub-IFD: %w", target, err)
			}
			continue
		}

		typ := uint16(ite.TagType())
		size, ok := typeSizes[typ]
		if !ok {
			continue
		}
		raw, err := ite.GetRawBytes()
		if err != nil {
			if typ == TypeUndefined {
				continue
			}
			return fmt.Errorf("tag 0x%04x: %w", ite.TagId(), err)
		}
		count := len(raw) / size
		b.Sections[s][ite.TagId()] = Entry{
			Type:  typ,
			Count: uint32(count),
			Data:  append([]byte(nil), raw[:count*size]...),
		}
	}
	return nil
}

func childIfd(ifd *exif.Ifd, tag uint16) *exif.Ifd {
	for _, child := range ifd.Children() {
		if child.IfdIdentity().TagId() == tag {
			return child
		}
	}
	return nil
}

func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

func isJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8
}
