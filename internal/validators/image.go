package validators

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// ValidateImage decodes a JPEG or PNG upload no larger than maxSize bytes
// and returns it converted to RGBA, along with the detected format.
func ValidateImage(data []byte, maxSize int64) (*image.RGBA, string, error) {
	if int64(len(data)) > maxSize {
		return nil, "", fmt.Errorf("%w: image exceeds maximum size of %dMB", types.ErrTooLarge, maxSize/1024/1024)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid image file: %s", types.ErrUnsupportedFormat, err)
	}
	if format != "jpeg" && format != "png" {
		return nil, "", fmt.Errorf("%w: only JPEG and PNG images are supported", types.ErrUnsupportedFormat)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba, format, nil
}

// ValidateImageString accepts base64 image data, optionally prefixed with a
// data URL header such as "data:image/png;base64,".
func ValidateImageString(s string, maxSize int64) (*image.RGBA, string, error) {
	data, err := DecodeImageString(s)
	if err != nil {
		return nil, "", err
	}
	return ValidateImage(data, maxSize)
}

func DecodeImageString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		_, encoded, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data URL", types.ErrUnsupportedFormat)
		}
		s = encoded
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64: %s", types.ErrUnsupportedFormat, err)
	}
	return data, nil
}
