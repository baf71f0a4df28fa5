package face

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrDecode indicates that an image payload could not be decoded.
var ErrDecode = errors.New("invalid image payload")

// DecodePayload decodes an image transported as text: either a raw base64
// string or a data URL (metadata,payload). When a comma is present, the
// segment after the last comma is the encoded bytes.
func DecodePayload(s string) ([]byte, error) {
	if i := strings.LastIndex(s, ","); i >= 0 {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	return data, nil
}

// ValidateImage checks that the data decodes as a raster image.
func ValidateImage(data []byte) error {
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
