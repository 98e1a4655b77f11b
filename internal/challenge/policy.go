// Package challenge generates the secret text of a captcha.
package challenge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCharset is returned when a policy has no drawable characters.
var ErrEmptyCharset = errors.New("empty charset")

// Policy selects how challenge text is generated.
type Policy int

const (
	Numeric Policy = iota
	Letters
	Mixed
	NumUpper
	NumLower
	UpperOnly
	LowerOnly
	Ideograph
	Arithmetic
)

var policyNames = map[Policy]string{
	Numeric:    "numeric",
	Letters:    "letters",
	Mixed:      "mixed",
	NumUpper:   "num_upper",
	NumLower:   "num_lower",
	UpperOnly:  "upper_only",
	LowerOnly:  "lower_only",
	Ideograph:  "ideograph",
	Arithmetic: "arithmetic",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy resolves a policy from its name.
func ParsePolicy(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown policy: %q", name)
}

// Range is an inclusive ASCII code range.
type Range struct {
	Lo byte
	Hi byte
}

func (r Range) contains(v int) bool {
	return v >= int(r.Lo) && v <= int(r.Hi)
}

// Charset is a set of allowed ASCII sub-ranges.
type Charset []Range

var (
	digits = Range{'0', '9'}
	upper  = Range{'A', 'Z'}
	lower  = Range{'a', 'z'}
)

var charsets = map[Policy]Charset{
	Numeric:   {digits},
	Letters:   {upper, lower},
	Mixed:     {digits, upper, lower},
	NumUpper:  {digits, upper},
	NumLower:  {digits, lower},
	UpperOnly: {upper},
	LowerOnly: {lower},
}

// CharsetOf returns the character ranges of a character-class policy.
// The second result is false for Ideograph and Arithmetic.
func CharsetOf(p Policy) (Charset, bool) {
	cs, ok := charsets[p]
	return cs, ok
}

// Contains reports whether r is in one of the sub-ranges.
func (cs Charset) Contains(r rune) bool {
	for _, rg := range cs {
		if rg.contains(int(r)) {
			return true
		}
	}
	return false
}

// span returns the smallest range covering every sub-range.
func (cs Charset) span() (int, int) {
	lo, hi := 255, 0
	for _, rg := range cs {
		if int(rg.Lo) < lo {
			lo = int(rg.Lo)
		}
		if int(rg.Hi) > hi {
			hi = int(rg.Hi)
		}
	}
	return lo, hi
}

func (cs Charset) validate() error {
	if len(cs) == 0 {
		return fmt.Errorf("%w: no ranges", ErrEmptyCharset)
	}
	for _, rg := range cs {
		if rg.Lo > rg.Hi {
			return fmt.Errorf("%w: range %q-%q", ErrEmptyCharset, rg.Lo, rg.Hi)
		}
	}
	return nil
}
