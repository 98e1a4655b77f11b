// Package captcha binds challenge text and rendering into ready-to-use
// captcha presets.
package captcha

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/kyiku/ptera-captcha/internal/animation"
	"github.com/kyiku/ptera-captcha/internal/challenge"
	"github.com/kyiku/ptera-captcha/internal/logging"
	"github.com/kyiku/ptera-captcha/internal/render"
)

var logger = logging.New("captcha")

// Captcha is one challenge of a preset. The text is generated on first use
// and never changes; every Encode renders it again with fresh randomness.
type Captcha struct {
	preset  Preset
	variant Variant
	cfg     render.Config
	comp    *render.Compositor

	mu  sync.Mutex
	rnd *rand.Rand

	challenge *challenge.Lazy
}

// Result is one encoded render.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	Frames int
	// Passes is 2 when the text overflowed and the image was redrawn wider.
	Passes int
}

// New creates a captcha of preset. The configuration is validated here so
// that later renders only fail on output errors.
func New(preset Preset, opts ...Option) (*Captcha, error) {
	if _, err := ParsePreset(string(preset)); err != nil {
		return nil, err
	}
	s := &settings{cfg: preset.Config()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := challenge.NewGenerator(s.cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge generator: %w", err)
	}

	seed := time.Now().UnixNano()
	if s.seed != nil {
		seed = *s.seed
	}

	variant := preset.Variant()
	variant.Policy = s.cfg.Policy

	c := &Captcha{
		preset:  preset,
		variant: variant,
		cfg:     s.cfg,
		comp:    render.NewCompositor(s.fonts),
		rnd:     rand.New(rand.NewSource(seed)),
	}
	if err := checkFont(s.cfg, c.comp.Fonts()); err != nil {
		return nil, err
	}
	c.challenge = challenge.NewLazy(func() challenge.Challenge {
		ch, err := gen.Generate(c.fork(), c.cfg.Length)
		if err != nil {
			// Length was validated above.
			logger.Errorf("failed to generate challenge: %v", err)
		}
		return ch
	})
	return c, nil
}

// checkFont fails when cfg draws ideographs with a font that lacks them.
// Other policies are covered by the built-in fonts.
func checkFont(cfg render.Config, fonts *render.FontBook) error {
	if cfg.Policy != challenge.Ideograph {
		return nil
	}
	if cfg.Font == nil {
		return fmt.Errorf("%w: ideograph text needs a font", ErrMissingFont)
	}
	if err := fonts.Covers(*cfg.Font, challenge.Ideographs()); err != nil {
		return fmt.Errorf("failed to check ideograph font: %w", err)
	}
	return nil
}

// fork derives an independent source so renders never share one.
func (c *Captcha) fork() *rand.Rand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return rand.New(rand.NewSource(c.rnd.Int63()))
}

// Preset returns the captcha's preset.
func (c *Captcha) Preset() Preset { return c.preset }

// Variant returns what the captcha renders.
func (c *Captcha) Variant() Variant { return c.variant }

// Config returns a copy of the render configuration.
func (c *Captcha) Config() render.Config { return c.cfg }

// Challenge returns the generated challenge.
func (c *Captcha) Challenge() challenge.Challenge {
	return c.challenge.Get()
}

// Text returns the text drawn on the image.
func (c *Captcha) Text() string {
	return c.Challenge().Text()
}

// Answer returns what a solver must type.
func (c *Captcha) Answer() string {
	return c.Challenge().Answer()
}

// MIMEType returns the content type of the encoded image.
func (c *Captcha) MIMEType() string {
	return c.variant.MIME()
}

// Encode renders the challenge into memory.
func (c *Captcha) Encode() (*Result, error) {
	runes := c.Challenge().Runes()
	rnd := c.fork()
	var buf bytes.Buffer

	if c.variant.Animated {
		anim, err := animation.NewEncoder(c.comp).Compose(rnd, runes, c.cfg)
		if err != nil {
			return nil, err
		}
		if err := anim.WriteGIF(&buf); err != nil {
			return nil, err
		}
		logger.Debugf("rendered %s with %d frames at %dx%d", c.preset, len(anim.Frames), anim.Width, anim.Height)
		return &Result{
			Data:   buf.Bytes(),
			MIME:   render.MIMEGIF,
			Width:  anim.Width,
			Height: anim.Height,
			Frames: len(anim.Frames),
			Passes: anim.Frames[0].Passes,
		}, nil
	}

	frame, err := c.comp.Compose(rnd, runes, c.cfg, render.StillFrame())
	if err != nil {
		return nil, err
	}
	if err := render.EncodePNG(&buf, frame.Image); err != nil {
		return nil, err
	}
	logger.Debugf("rendered %s at %dx%d", c.preset, frame.Width, frame.Height)
	return &Result{
		Data:   buf.Bytes(),
		MIME:   render.MIMEPNG,
		Width:  frame.Width,
		Height: frame.Height,
		Frames: 1,
		Passes: frame.Passes,
	}, nil
}

// Render writes the image to w. Nothing is written if rendering fails.
func (c *Captcha) Render(w io.Writer) error {
	res, err := c.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(res.Data); err != nil {
		return fmt.Errorf("%w: failed to write image: %v", ErrSerialization, err)
	}
	return nil
}

// DataURI renders the image as a base64 data URI of its own MIME type.
func (c *Captcha) DataURI() (string, error) {
	return c.DataURIWithPrefix("data:" + c.MIMEType() + ";base64,")
}

// DataURIWithPrefix renders the image as base64 after prefix.
func (c *Captcha) DataURIWithPrefix(prefix string) (string, error) {
	res, err := c.Encode()
	if err != nil {
		return "", err
	}
	return prefix + base64.StdEncoding.EncodeToString(res.Data), nil
}

// WriteFile renders the image into a new file at path. The file is created
// only after rendering succeeded and is always closed.
func (c *Captcha) WriteFile(path string) (err error) {
	res, err := c.Encode()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create file: %v", ErrSerialization, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close file: %v", ErrSerialization, cerr)
		}
	}()
	if _, err := f.Write(res.Data); err != nil {
		return fmt.Errorf("%w: failed to write file: %v", ErrSerialization, err)
	}
	return nil
}

// EncodeDataURI formats res as a data URI.
func EncodeDataURI(res *Result) string {
	return "data:" + res.MIME + ";base64," + base64.StdEncoding.EncodeToString(res.Data)
}
