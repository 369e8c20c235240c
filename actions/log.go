package actions

import (
	"context"
	"log/slog"
	"subpub/config"
	"subpub/domain"
)

type LogOptions struct {
	Name  string `yaml:"name"`
	Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
}

// Log writes every message it receives to the application logger.
type Log struct {
	name  string
	level slog.Level
	log   *slog.Logger
}

func NewLog(log *slog.Logger, options map[string]any) (*Log, error) {
	var opts LogOptions
	if err := config.Decode(options, &opts); err != nil {
		return nil, err
	}
	name := opts.Name
	if name == "" {
		name = "log"
	}
	level := slog.LevelInfo
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}
	return &Log{name: name, level: level, log: log.With("action", name)}, nil
}

func (l *Log) Name() string {
	return l.name
}

func (l *Log) Run(ctx context.Context, messages []*domain.Message) error {
	for _, msg := range messages {
		weight, _ := msg.Get(domain.FieldWeight)
		l.log.Log(ctx, l.level, msg.Body(),
			"type", msg.Type(),
			"name", msg.Name(),
			"weight", weight,
			"tags", msg.Tags(),
			"location", msg.Location(),
			"timestamp", msg.Timestamp(),
			"attributes", msg.Attributes(),
		)
	}
	return nil
}
