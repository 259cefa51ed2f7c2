package scan

import (
	"path/filepath"
	"strings"
)

// Kind tells the extractor how much metadata a file format can give.
type Kind string

const (
	// Still covers formats whose EXIF block is read and written in full.
	Still Kind = "still"
	// HEIF covers ISO-BMFF images; only capture dates are read from them.
	HEIF Kind = "heif"
)

type FileType string

const (
	JPEG FileType = "jpeg"
	TIFF FileType = "tiff"
	HEIC FileType = "heic"
)

var fileExtensionToFileType = map[string]FileType{
	"jpg": JPEG, "jpeg": JPEG, "jpe": JPEG, "jfif": JPEG,
	"tiff": TIFF, "tif": TIFF,
	"heic": HEIC, "heif": HEIC, "hif": HEIC,
}

var fileTypeToKind = map[FileType]Kind{
	JPEG: Still,
	TIFF: Still,
	HEIC: HEIF,
}

// TypeOf returns the file type and kind of path based on its extension, or
// empty values when the extension is not supported.
func TypeOf(path string) (FileType, Kind) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", ""
	}

	fileType, ok := fileExtensionToFileType[ext[1:]] // Remove the leading dot
	if !ok {
		return "", ""
	}
	return fileType, fileTypeToKind[fileType]
}

// Supported reports whether path has a supported image extension.
func Supported(path string) bool {
	_, kind := TypeOf(path)
	return kind != ""
}
