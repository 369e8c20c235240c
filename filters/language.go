package filters

import (
	"fmt"
	"strings"
	"subpub/domain"
	"subpub/errors"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

// Language matches messages whose body is written in one of the
// configured languages, given as ISO 639-1 codes.
type Language struct {
	codes []string
}

func NewLanguage(options any) (*Language, error) {
	codes, ok := stringList(options)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported language format %v", errors.ErrInvalidFilter, options)
	}
	return &Language{codes: lo.Map(codes, func(code string, _ int) string {
		return strings.ToLower(strings.TrimSpace(code))
	})}, nil
}

func (l *Language) Match(msg *domain.Message) bool {
	body := msg.Body()
	if strings.TrimSpace(body) == "" {
		return false
	}
	info := whatlanggo.Detect(body)
	return lo.Contains(l.codes, info.Lang.Iso6391())
}
