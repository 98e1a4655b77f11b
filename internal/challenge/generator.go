package challenge

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// Challenge is the secret a solver must reproduce.
// For arithmetic challenges Text is the rendered expression and Answer
// the evaluated result; otherwise both are the same string.
type Challenge struct {
	text   string
	answer string
	policy Policy
}

// NewChallenge wraps an already generated text.
func NewChallenge(policy Policy, text, answer string) Challenge {
	return Challenge{text: text, answer: answer, policy: policy}
}

// Text returns the string drawn on the image.
func (c Challenge) Text() string { return c.text }

// Answer returns the expected solver input.
func (c Challenge) Answer() string { return c.answer }

// Policy returns the policy the challenge was generated with.
func (c Challenge) Policy() Policy { return c.policy }

// Runes returns the characters to draw.
func (c Challenge) Runes() []rune { return []rune(c.text) }

// Generator produces challenges for one policy.
type Generator struct {
	policy  Policy
	charset Charset
}

// NewGenerator creates a generator for a built-in policy.
func NewGenerator(policy Policy) (*Generator, error) {
	switch policy {
	case Ideograph, Arithmetic:
		return &Generator{policy: policy}, nil
	}
	cs, ok := CharsetOf(policy)
	if !ok {
		return nil, fmt.Errorf("unknown policy: %d", int(policy))
	}
	return NewCharsetGenerator(policy, cs)
}

// NewCharsetGenerator creates a rejection-sampling generator over a custom charset.
// An empty charset fails here instead of looping forever in Generate.
func NewCharsetGenerator(policy Policy, cs Charset) (*Generator, error) {
	if err := cs.validate(); err != nil {
		return nil, err
	}
	return &Generator{policy: policy, charset: cs}, nil
}

// Generate draws a challenge of the given length.
func (g *Generator) Generate(rnd *rand.Rand, length int) (Challenge, error) {
	if length < 1 {
		return Challenge{}, fmt.Errorf("invalid challenge length: %d", length)
	}
	switch g.policy {
	case Arithmetic:
		if length > MaxExpressionLength {
			return Challenge{}, fmt.Errorf("%w: %d operands", ErrOverflow, length)
		}
		expr, result := Expression(rnd, length)
		return Challenge{text: expr + "=?", answer: fmt.Sprintf("%d", result), policy: g.policy}, nil
	case Ideograph:
		text := drawIdeographs(rnd, length)
		return Challenge{text: text, answer: text, policy: g.policy}, nil
	}
	text := g.sample(rnd, length)
	return Challenge{text: text, answer: text, policy: g.policy}, nil
}

// sample draws from the span of the charset and rejects values outside
// the allowed sub-ranges until length characters are accepted.
func (g *Generator) sample(rnd *rand.Rand, length int) string {
	lo, hi := g.charset.span()
	var sb strings.Builder
	sb.Grow(length)
	for n := 0; n < length; {
		v := lo + rnd.Intn(hi-lo+1)
		if !g.charset.Contains(rune(v)) {
			continue
		}
		sb.WriteByte(byte(v))
		n++
	}
	return sb.String()
}

func drawIdeographs(rnd *rand.Rand, length int) string {
	out := make([]rune, length)
	for i := range out {
		out[i] = ideographs[rnd.Intn(len(ideographs))]
	}
	return string(out)
}

// Ideographs returns a copy of the ideograph table.
func Ideographs() []rune {
	out := make([]rune, len(ideographs))
	copy(out, ideographs)
	return out
}

// IsIdeograph reports whether r belongs to the ideograph table.
func IsIdeograph(r rune) bool {
	for _, c := range ideographs {
		if c == r {
			return true
		}
	}
	return false
}

// Lazy generates a challenge on first access and caches it.
type Lazy struct {
	once      sync.Once
	generate  func() Challenge
	challenge Challenge
}

// NewLazy creates a lazily generated challenge.
func NewLazy(generate func() Challenge) *Lazy {
	return &Lazy{generate: generate}
}

// Get returns the challenge, generating it exactly once.
func (l *Lazy) Get() Challenge {
	l.once.Do(func() {
		l.challenge = l.generate()
	})
	return l.challenge
}
