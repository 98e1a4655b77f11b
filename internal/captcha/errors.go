package captcha

import (
	"errors"

	"github.com/kyiku/ptera-captcha/internal/challenge"
	"github.com/kyiku/ptera-captcha/internal/render"
)

var (
	// ErrUnknownPreset is returned for a preset name that does not exist.
	ErrUnknownPreset = errors.New("unknown captcha preset")

	ErrInvalidConfig = render.ErrInvalidConfig
	ErrSerialization = render.ErrSerialization
	ErrEmptyCharset  = challenge.ErrEmptyCharset
	// ErrMissingFont is returned when no registered font can draw the
	// preset's characters.
	ErrMissingFont = render.ErrMissingGlyph
)

// MIME types of the encoded images.
const (
	MIMEPNG = render.MIMEPNG
	MIMEGIF = render.MIMEGIF
)
