package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
)

// MIME types of the encoded outputs.
const (
	MIMEPNG = "image/png"
	MIMEGIF = "image/gif"
)

// EncodePNG encodes img completely in memory before writing it to w, so a
// failed encode never leaves a partial image in w.
func EncodePNG(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("%w: failed to encode png: %v", ErrSerialization, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: failed to write png: %v", ErrSerialization, err)
	}
	return nil
}
