package challenge

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Operators used in arithmetic challenges. Division is excluded so the
// answer is always an integer.
var Operators = []byte{'+', '-', 'x'}

// MaxExpressionLength is the longest operand count whose worst case, 9^n,
// still fits a 32-bit int.
const MaxExpressionLength = 9

// ErrOverflow is returned when an expression's value does not fit an int.
var ErrOverflow = errors.New("arithmetic overflow")

// Expression builds length random digits joined by random operators and
// returns the expression with its value.
func Expression(rnd *rand.Rand, length int) (string, int) {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		sb.WriteByte(byte('0' + rnd.Intn(10)))
		if i < length-1 {
			sb.WriteByte(Operators[rnd.Intn(len(Operators))])
		}
	}
	expr := sb.String()
	result, err := Evaluate(expr)
	if err != nil {
		// unreachable: the expression is built from valid tokens
		panic(err)
	}
	return expr, result
}

// Evaluate computes an expression of non-negative integers joined by
// '+', '-' and 'x' ('*' is accepted too). Multiplication binds tighter
// than addition and subtraction. A trailing "=?" is ignored.
func Evaluate(expr string) (int, error) {
	expr = strings.TrimSuffix(strings.TrimSpace(expr), "=?")
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	total := 0
	sign := 1
	term := 1
	num := -1
	pos := 0
	for pos <= len(expr) {
		if pos < len(expr) && expr[pos] >= '0' && expr[pos] <= '9' {
			start := pos
			for pos < len(expr) && expr[pos] >= '0' && expr[pos] <= '9' {
				pos++
			}
			v, err := strconv.Atoi(expr[start:pos])
			if err != nil {
				return 0, fmt.Errorf("failed to parse operand %q: %w", expr[start:pos], err)
			}
			num = v
			continue
		}
		if num < 0 {
			return 0, fmt.Errorf("missing operand at offset %d in %q", pos, expr)
		}
		var ok bool
		if term, ok = mul(term, num); !ok {
			return 0, fmt.Errorf("%w in %q", ErrOverflow, expr)
		}
		num = -1
		if pos == len(expr) || expr[pos] == '+' || expr[pos] == '-' {
			if total, ok = add(total, sign*term); !ok {
				return 0, fmt.Errorf("%w in %q", ErrOverflow, expr)
			}
		}
		if pos == len(expr) {
			break
		}
		switch expr[pos] {
		case 'x', 'X', '*':
		case '+':
			sign, term = 1, 1
		case '-':
			sign, term = -1, 1
		default:
			return 0, fmt.Errorf("unexpected %q at offset %d in %q", expr[pos], pos, expr)
		}
		pos++
	}
	return total, nil
}

// mul multiplies non-negative a and b.
func mul(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	return c, c/b == a
}

func add(a, b int) (int, bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, false
	}
	return a + b, true
}
