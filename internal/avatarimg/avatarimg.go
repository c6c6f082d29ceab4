// Package avatarimg normalizes uploaded avatar images to a fixed-size
// PNG so the store never holds arbitrary formats or dimensions.
package avatarimg

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
)

// Size is the edge length of a stored avatar in pixels.
const Size = 250

// MaxUploadBytes is the largest accepted upload.
const MaxUploadBytes = 1 << 20 // 1 MiB

// AllowedExtension reports whether a filename extension (with leading
// dot, lower-cased) is an accepted image type.
func AllowedExtension(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Normalize decodes an uploaded image and re-encodes it as an exactly
// SizexSize PNG, discarding the original format and dimensions.
func Normalize(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}

	img = imaging.Resize(img, Size, Size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
