package checks

import (
	"fmt"
	"strconv"
	"strings"
	"subpub/domain"
	"subpub/errors"
)

// Calc adjusts a message weight.
type Calc func(weight int) int

// ParseCalc reads a weight adjustment from the pipeline options.
// An integer n, or "+n" / "-n", adds n. "/n" divides by n.
// A nil value means no adjustment.
func ParseCalc(value any) (Calc, error) {
	if value == nil {
		return nil, nil
	}
	if n, ok := domain.AsInt(value); ok {
		return add(n), nil
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidCalc, value)
	}
	if divisor, found := strings.CutPrefix(s, "/"); found {
		n, err := strconv.Atoi(divisor)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: %q", errors.ErrInvalidCalc, s)
		}
		return func(weight int) int { return weight / n }, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidCalc, s)
	}
	return add(n), nil
}

func add(n int) Calc {
	return func(weight int) int { return weight + n }
}
