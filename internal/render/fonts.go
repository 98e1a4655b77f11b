package render

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Style is a font weight/slant combination.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// Built-in families.
const (
	FamilyGo       = "Go"
	FamilyGoMono   = "Go Mono"
	FamilyGoMedium = "Go Medium"

	// FamilyIdeograph is the family ideograph captchas ask for. It has to
	// be registered with a font that covers CJK glyphs.
	FamilyIdeograph = "Ideograph"
)

// Font selects a face from a FontBook.
type Font struct {
	Family string
	Style  Style
	Size   float64
}

type fontKey struct {
	family string
	style  Style
}

// FontBook holds parsed fonts. Parsing happens once per font; faces are
// created per render since a face is not safe for concurrent use.
type FontBook struct {
	mu     sync.RWMutex
	raw    map[fontKey][]byte
	parsed map[fontKey]*truetype.Font
}

var builtin = map[fontKey][]byte{
	{FamilyGo, Regular}:        goregular.TTF,
	{FamilyGo, Bold}:           gobold.TTF,
	{FamilyGo, Italic}:         goitalic.TTF,
	{FamilyGo, BoldItalic}:     gobolditalic.TTF,
	{FamilyGoMono, Regular}:    gomono.TTF,
	{FamilyGoMono, Bold}:       gomonobold.TTF,
	{FamilyGoMono, Italic}:     gomonoitalic.TTF,
	{FamilyGoMono, BoldItalic}: gomonobolditalic.TTF,
	{FamilyGoMedium, Regular}:  gomedium.TTF,
	{FamilyGoMedium, Italic}:   gomediumitalic.TTF,
}

// randomFamilies are the families picked when a render has no font.
var randomFamilies = []string{FamilyGo, FamilyGoMono, FamilyGoMedium}

// NewFontBook creates a book preloaded with the Go font families.
func NewFontBook() *FontBook {
	b := &FontBook{
		raw:    make(map[fontKey][]byte, len(builtin)),
		parsed: make(map[fontKey]*truetype.Font),
	}
	for k, v := range builtin {
		b.raw[k] = v
	}
	return b
}

var (
	defaultBook     *FontBook
	defaultBookOnce sync.Once
)

// DefaultFontBook returns the process-wide font book.
func DefaultFontBook() *FontBook {
	defaultBookOnce.Do(func() {
		defaultBook = NewFontBook()
	})
	return defaultBook
}

// Register adds a TrueType font under family and style. The data is parsed
// immediately so a bad font fails here rather than during a render.
func (b *FontBook) Register(family string, style Style, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("failed to parse font %q: %w", family, err)
	}
	k := fontKey{family, style}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw[k] = ttf
	b.parsed[k] = f
	return nil
}

// RegisterFile reads a TrueType file from disk and registers it.
func (b *FontBook) RegisterFile(family string, style Style, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read font file: %w", err)
	}
	return b.Register(family, style, data)
}

// Has reports whether any style of family is registered.
func (b *FontBook) Has(family string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for k := range b.raw {
		if k.family == family {
			return true
		}
	}
	return false
}

// Families lists registered families in alphabetical order.
func (b *FontBook) Families() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := map[string]bool{}
	var out []string
	for k := range b.raw {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	sort.Strings(out)
	return out
}

// resolve finds the closest registered font: the requested style, then
// the family's regular style, then Go regular.
func (b *FontBook) resolve(f Font) (*truetype.Font, fontKey, error) {
	candidates := []fontKey{
		{f.Family, f.Style},
		{f.Family, Regular},
		{FamilyGo, f.Style},
		{FamilyGo, Regular},
	}
	for _, k := range candidates {
		tf, err := b.load(k)
		if err != nil {
			return nil, k, err
		}
		if tf != nil {
			return tf, k, nil
		}
	}
	return nil, fontKey{}, fmt.Errorf("no font available for %q", f.Family)
}

func (b *FontBook) load(k fontKey) (*truetype.Font, error) {
	b.mu.RLock()
	tf, ok := b.parsed[k]
	raw, known := b.raw[k]
	b.mu.RUnlock()
	if ok {
		return tf, nil
	}
	if !known {
		return nil, nil
	}

	tf, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", k.family, err)
	}
	b.mu.Lock()
	b.parsed[k] = tf
	b.mu.Unlock()
	return tf, nil
}

// Face creates a new face for f.
func (b *FontBook) Face(f Font) (font.Face, error) {
	tf, k, err := b.resolve(f)
	if err != nil {
		return nil, err
	}
	if k.family != f.Family {
		logger.Warnf("font family %q not registered, using %q", f.Family, k.family)
	}
	return truetype.NewFace(tf, &truetype.Options{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Covers checks that the font resolved for f has a glyph for every rune.
// Without it the text would be drawn as .notdef boxes.
func (b *FontBook) Covers(f Font, runes []rune) error {
	tf, k, err := b.resolve(f)
	if err != nil {
		return err
	}
	for _, r := range runes {
		if r == ' ' {
			continue
		}
		if tf.Index(r) == 0 {
			return fmt.Errorf("%w: %q lacks %q", ErrMissingGlyph, k.family, r)
		}
	}
	return nil
}

// RandomFont picks a built-in family and style with a size in
// [0.8*size, size].
func RandomFont(rnd *rand.Rand, size float64) Font {
	lo := int(size * 0.8)
	sz := lo + rnd.Intn(int(size)-lo+1)
	if sz < 1 {
		sz = 1
	}
	return Font{
		Family: randomFamilies[rnd.Intn(len(randomFamilies))],
		Style:  Style(rnd.Intn(4)),
		Size:   float64(sz),
	}
}
