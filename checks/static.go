package checks

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"subpub/config"
	"subpub/domain"
	"subpub/errors"
)

type StaticOptions struct {
	Options  `yaml:",inline"`
	Defaults map[string]any   `yaml:"defaults"`
	Messages []map[string]any `yaml:"messages" validate:"required,min=1"`
}

// Static emits the same configured messages on every run.
type Static struct {
	*Base
	messages []domain.Fields
}

func NewStatic(log *slog.Logger, options map[string]any) (*Static, error) {
	var opts StaticOptions
	if err := config.Decode(options, &opts); err != nil {
		return nil, err
	}
	base, err := NewBase(log, "static", opts.Options)
	if err != nil {
		return nil, err
	}
	for field, value := range opts.Defaults {
		if _, ok := domain.Lookup(domain.Field(field)); !ok {
			return nil, fmt.Errorf("defaults: %w", errors.UnknownFieldError(field))
		}
		base.SetDefault(domain.Field(field), value)
	}
	messages := make([]domain.Fields, 0, len(opts.Messages))
	for _, raw := range opts.Messages {
		messages = append(messages, toFields(raw))
	}
	return &Static{Base: base, messages: messages}, nil
}

func (s *Static) Run(_ context.Context) ([]domain.Fields, error) {
	batch := make([]domain.Fields, 0, len(s.messages))
	for _, fields := range s.messages {
		batch = append(batch, maps.Clone(fields))
	}
	return batch, nil
}

func toFields(raw map[string]any) domain.Fields {
	fields := make(domain.Fields, len(raw))
	for key, value := range raw {
		fields[domain.Field(key)] = value
	}
	return fields
}
