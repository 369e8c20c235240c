// Package filters selects the messages handed to an action.
package filters

import (
	"fmt"
	"subpub/config"
	"subpub/contract"
	"subpub/domain"
	"subpub/errors"

	"github.com/samber/lo"
)

type builder func(options any) (contract.Filter, error)

var builders = map[string]builder{
	"weight":   func(options any) (contract.Filter, error) { return NewWeight(options) },
	"tags":     func(options any) (contract.Filter, error) { return NewTags(options) },
	"keyword":  func(options any) (contract.Filter, error) { return NewKeyword(options) },
	"language": func(options any) (contract.Filter, error) { return NewLanguage(options) },
}

// New builds the filter of the given kind.
func New(kind string, options any) (contract.Filter, error) {
	build, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: filter %q", errors.ErrUnknownComponent, kind)
	}
	filter, err := build(options)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", kind, err)
	}
	return filter, nil
}

// Set matches when all of its filters match.
type Set []contract.Filter

func (s Set) Match(msg *domain.Message) bool {
	return lo.EveryBy(s, func(filter contract.Filter) bool { return filter.Match(msg) })
}

// Sets selects a message when any of its sets matches.
// No set at all selects everything.
type Sets []Set

func (s Sets) Apply(messages []*domain.Message) []*domain.Message {
	if len(s) == 0 {
		return messages
	}
	return lo.Filter(messages, func(msg *domain.Message, _ int) bool {
		return lo.SomeBy(s, func(set Set) bool { return set.Match(msg) })
	})
}

// Build turns the configured filter sets into Sets.
func Build(configured config.FilterSets) (Sets, error) {
	sets := make(Sets, 0, len(configured))
	for _, filterSet := range configured {
		set := make(Set, 0, len(filterSet))
		for _, kind := range filterSet.Names() {
			filter, err := New(kind, filterSet[kind])
			if err != nil {
				return nil, err
			}
			set = append(set, filter)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// stringList reads a single string or a list of strings.
func stringList(options any) ([]string, bool) {
	switch v := options.(type) {
	case string:
		return []string{v}, true
	case []string, []any:
		list := domain.AsStrings(v)
		return list, len(list) > 0
	default:
		return nil, false
	}
}
