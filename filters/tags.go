package filters

import (
	"fmt"
	"subpub/config"
	"subpub/domain"
	"subpub/errors"

	"github.com/samber/lo"
)

const (
	RuleAny = "ANY"
	RuleAll = "ALL"
)

type TagsOptions struct {
	Rule string            `yaml:"rule" validate:"required,oneof=ANY ALL"`
	List config.StringList `yaml:"list" validate:"required,min=1"`
}

// Tags matches messages carrying any (or all) of the configured tags.
// Options are a tag, a list of tags, or {rule: ANY|ALL, list: [...]}.
type Tags struct {
	rule string
	tags []string
}

func NewTags(options any) (*Tags, error) {
	if m, ok := options.(map[string]any); ok {
		var opts TagsOptions
		if err := config.Decode(m, &opts); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidFilter, err)
		}
		return &Tags{rule: opts.Rule, tags: lo.Uniq(opts.List)}, nil
	}
	tags, ok := stringList(options)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported tag format %v", errors.ErrInvalidFilter, options)
	}
	return &Tags{rule: RuleAny, tags: lo.Uniq(tags)}, nil
}

func (t *Tags) Match(msg *domain.Message) bool {
	tags := msg.Tags()
	if t.rule == RuleAll {
		return lo.Every(tags, t.tags)
	}
	return lo.Some(tags, t.tags)
}
