package filters

import (
	"fmt"
	"subpub/domain"
	"subpub/errors"
	"subpub/moderation"
)

// Keyword matches messages whose body holds one of the configured words.
type Keyword struct {
	matcher moderation.Matcher
}

func NewKeyword(options any) (*Keyword, error) {
	words, ok := stringList(options)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported keyword format %v", errors.ErrInvalidFilter, options)
	}
	matcher, err := moderation.NewMatcher(words)
	if err != nil {
		return nil, err
	}
	return &Keyword{matcher: matcher}, nil
}

func (k *Keyword) Match(msg *domain.Message) bool {
	return k.matcher.Contains(msg.Body())
}
