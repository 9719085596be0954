package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// EncodeImage encodes img as "png" or "jpeg". quality only applies to jpeg.
func EncodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch strings.ToLower(format) {
	case "", "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	case "jpeg", "jpg":
		if quality < 1 || quality > 100 {
			quality = 90
		}
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return nil, fmt.Errorf("invalid format '%s'. Supported formats are 'png' and 'jpeg'", format)
	}

	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL wraps encoded image bytes as a data URL for transport to a UI.
func DataURL(format string, data []byte) string {
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}

// DecodeImageData accepts a data URL or bare base64 PNG/JPEG and decodes it.
func DecodeImageData(data string) (image.Image, error) {
	payload := strings.TrimSpace(data)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("unsupported data URL, expected base64 encoding")
		}
		payload = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
