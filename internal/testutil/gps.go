package testutil

import (
	"github.com/tonimelisma/photosidecar/internal/coords"
	"github.com/tonimelisma/photosidecar/internal/exifblock"
)

// SetGPS writes both coordinate axes into b.
func SetGPS(b *exifblock.Block, lat, lon float64) {
	latDMS := coords.ToSexagesimal(lat)
	lonDMS := coords.ToSexagesimal(lon)
	b.SetASCII(exifblock.GPS, exifblock.TagGPSLatitudeRef, coords.RefFor(lat, coords.Latitude))
	b.SetRationals(exifblock.GPS, exifblock.TagGPSLatitude, latDMS[:])
	b.SetASCII(exifblock.GPS, exifblock.TagGPSLongitudeRef, coords.RefFor(lon, coords.Longitude))
	b.SetRationals(exifblock.GPS, exifblock.TagGPSLongitude, lonDMS[:])
}
