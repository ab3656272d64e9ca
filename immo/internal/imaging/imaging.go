// CLAUDE:SUMMARY Normalises uploaded listing photos to RGB JPEG parts for the model call.
// Package imaging prepares uploaded listing photos for extraction.
//
// The model endpoint accepts inline JPEG reliably; PNG screenshots with
// alpha and WebP photos saved from listing portals do not always survive
// as-is. Every upload is decoded, flattened onto white, and re-encoded
// as JPEG. A photo that cannot be decoded is skipped with a warning so
// one corrupt file never sinks the whole batch.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/hazyhaar/immotrack/genai"
)

// jpegQuality balances readability of printed prices and floor plans
// against upload size.
const jpegQuality = 85

// Upload is one photo received from the client.
type Upload struct {
	Filename string
	Data     []byte
}

// Normalize converts uploads into inline JPEG parts. Undecodable uploads
// are skipped and reported in warnings; the returned parts keep the
// upload order.
func Normalize(uploads []Upload) ([]genai.Part, []string) {
	var parts []genai.Part
	var warnings []string

	for _, u := range uploads {
		data, err := toJPEG(u.Data)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("photo %s ignorée : %v", u.Filename, err))
			continue
		}
		parts = append(parts, genai.Part{MIME: "image/jpeg", Data: data})
	}
	return parts, warnings
}

func toJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	// Flatten onto white. JPEG has no alpha channel and a transparent
	// screenshot encoded over black becomes unreadable.
	bounds := img.Bounds()
	rgb := image.NewRGBA(bounds)
	draw.Draw(rgb, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(rgb, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}
	return buf.Bytes(), nil
}
