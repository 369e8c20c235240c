package filters

import (
	"fmt"
	"strconv"
	"subpub/domain"
	"subpub/errors"

	"github.com/samber/lo"
)

// Weight matches messages whose weight is one of the configured values.
// Options are a single int, a list of ints, or a one-entry {min: max}
// mapping for an inclusive range.
type Weight struct {
	match func(weight int) bool
}

func NewWeight(options any) (*Weight, error) {
	if n, ok := domain.AsInt(options); ok {
		return &Weight{match: func(weight int) bool { return weight == n }}, nil
	}
	switch v := options.(type) {
	case []any:
		weights := make([]int, 0, len(v))
		for _, item := range v {
			n, ok := domain.AsInt(item)
			if !ok {
				return nil, fmt.Errorf("%w: malformed weight list %v", errors.ErrInvalidFilter, v)
			}
			weights = append(weights, n)
		}
		return &Weight{match: func(weight int) bool { return lo.Contains(weights, weight) }}, nil
	case map[string]any:
		for key, upper := range v {
			return newWeightRange(len(v), key, upper)
		}
	case map[any]any:
		for key, upper := range v {
			return newWeightRange(len(v), key, upper)
		}
	}
	return nil, fmt.Errorf("%w: malformed weight options %v", errors.ErrInvalidFilter, options)
}

func newWeightRange(size int, key, value any) (*Weight, error) {
	if size != 1 {
		return nil, fmt.Errorf("%w: weight range needs exactly one entry", errors.ErrInvalidFilter)
	}
	lower, ok := domain.AsInt(key)
	if s, isString := key.(string); isString {
		n, err := strconv.Atoi(s)
		lower, ok = n, err == nil
	}
	upper, upperOK := domain.AsInt(value)
	if !ok || !upperOK {
		return nil, fmt.Errorf("%w: malformed weight range %v: %v", errors.ErrInvalidFilter, key, value)
	}
	return &Weight{match: func(weight int) bool { return weight >= lower && weight <= upper }}, nil
}

func (w *Weight) Match(msg *domain.Message) bool {
	weight, ok := msg.Weight()
	return ok && w.match(weight)
}
