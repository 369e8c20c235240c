// Package checks holds the message producers of the pipeline.
// Every check embeds a Base which builds messages from its defaults,
// marks fresh ones and degrades stale ones between runs.
package checks

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"subpub/config"
	"subpub/domain"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// TagNew marks messages that were not part of the previous update.
const TagNew = "new"

// Options are shared by every check.
type Options struct {
	Name        string            `yaml:"name"`
	Interval    int               `yaml:"interval" validate:"gte=0"`
	Tags        config.StringList `yaml:"tags"`
	WeightCalc  any               `yaml:"weight_calc"`
	DegradeCalc any               `yaml:"degrade_calc"`
}

type Base struct {
	ID          string
	name        string
	interval    time.Duration
	log         *slog.Logger
	defaults    domain.Fields
	tags        []string
	weightCalc  Calc
	degradeCalc Calc
	messages    []*domain.Message
}

// NewBase prepares the shared state of a check. The check is named after
// its kind unless the options name it.
func NewBase(log *slog.Logger, kind string, options Options) (*Base, error) {
	weightCalc, err := ParseCalc(options.WeightCalc)
	if err != nil {
		return nil, fmt.Errorf("weight_calc: %w", err)
	}
	degradeCalc, err := ParseCalc(options.DegradeCalc)
	if err != nil {
		return nil, fmt.Errorf("degrade_calc: %w", err)
	}
	name := options.Name
	if name == "" {
		name = kind
	}
	id := uuid.NewString()
	return &Base{
		ID:          id,
		name:        name,
		interval:    time.Duration(options.Interval) * time.Second,
		log:         log.With("check", name, "id", id),
		defaults:    domain.Fields{},
		tags:        lo.Uniq(options.Tags),
		weightCalc:  weightCalc,
		degradeCalc: degradeCalc,
	}, nil
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Interval() time.Duration {
	return b.interval
}

// SetDefault sets a value used when a produced message does not carry one.
func (b *Base) SetDefault(field domain.Field, value any) {
	b.defaults[field] = value
}

// Build overlays fields on the check defaults, builds the message and
// applies the weight calc. Configured and default tags are merged with the
// supplied ones.
func (b *Base) Build(fields domain.Fields) (*domain.Message, error) {
	values := maps.Clone(b.defaults)
	if attributes, ok := values[domain.FieldAttributes].(map[string]any); ok {
		values[domain.FieldAttributes] = maps.Clone(attributes)
	}
	maps.Copy(values, fields)
	values[domain.FieldTags] = lo.Union(
		b.tags,
		domain.AsStrings(b.defaults[domain.FieldTags]),
		domain.AsStrings(fields[domain.FieldTags]),
	)

	msg, err := domain.NewMessage(values)
	if err != nil {
		return nil, err
	}
	if b.weightCalc != nil {
		if weight, ok := msg.Weight(); ok {
			if err := msg.Set(domain.FieldWeight, b.weightCalc(weight)); err != nil {
				return nil, err
			}
		}
	}
	b.log.Debug("Message built", "name", msg.Name(), "body", msg.Body())
	return msg, nil
}

// Update replaces the current messages with the batch.
// Messages unknown to the previous list are tagged new.
// On error the previous list is kept.
func (b *Base) Update(batch []domain.Fields) error {
	previous := lo.SliceToMap(b.messages, func(msg *domain.Message) (string, struct{}) {
		return identity(msg), struct{}{}
	})

	updated := make([]*domain.Message, 0, len(batch))
	for _, fields := range batch {
		msg, err := b.Build(fields)
		if err != nil {
			return fmt.Errorf("check %s: %w", b.name, err)
		}
		if _, seen := previous[identity(msg)]; !seen {
			if err := msg.Set(domain.FieldTags, lo.Union(msg.Tags(), []string{TagNew})); err != nil {
				return err
			}
		}
		updated = append(updated, msg)
	}
	b.messages = updated
	return nil
}

// Degrade drops the new tag, applies the degrade calc and forgets the
// messages whose weight fell to zero or below.
func (b *Base) Degrade() bool {
	kept := make([]*domain.Message, 0, len(b.messages))
	for _, msg := range b.messages {
		_ = msg.Set(domain.FieldTags, lo.Without(msg.Tags(), TagNew))
		weight, ok := msg.Weight()
		if !ok {
			continue
		}
		if b.degradeCalc != nil {
			weight = b.degradeCalc(weight)
			_ = msg.Set(domain.FieldWeight, weight)
		}
		if weight > 0 {
			kept = append(kept, msg)
		}
	}
	if dropped := len(b.messages) - len(kept); dropped > 0 {
		b.log.Debug("Messages expired", "count", dropped)
	}
	b.messages = kept
	return true
}

func (b *Base) Messages() []*domain.Message {
	return slices.Clone(b.messages)
}

// identity is what makes two messages of successive updates the same one.
func identity(msg *domain.Message) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s", msg.Type(), msg.Name(), msg.Body(), msg.Location())
}
