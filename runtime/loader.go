package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"subpub/actions"
	"subpub/checks"
	"subpub/config"
	"subpub/contract"
	"subpub/errors"
	"subpub/filters"
)

type checkBuilder func(log *slog.Logger, options map[string]any) (contract.Check, error)

type actionBuilder func(options map[string]any) (contract.Action, error)

// Loader turns a pipeline file into checks and action bindings.
type Loader struct {
	log     *slog.Logger
	checks  map[string]checkBuilder
	actions map[string]actionBuilder
}

// NewLoader registers the built-in checks and actions.
// Debug output goes to out.
func NewLoader(log *slog.Logger, out io.Writer, colours bool) *Loader {
	return &Loader{
		log: log,
		checks: map[string]checkBuilder{
			"static": func(log *slog.Logger, options map[string]any) (contract.Check, error) {
				return checks.NewStatic(log, options)
			},
			"followfile": func(log *slog.Logger, options map[string]any) (contract.Check, error) {
				return checks.NewFollowFile(log, options)
			},
			"kernel": func(log *slog.Logger, options map[string]any) (contract.Check, error) {
				return checks.NewKernel(log, options)
			},
			"process": func(log *slog.Logger, options map[string]any) (contract.Check, error) {
				return checks.NewProcess(log, options)
			},
		},
		actions: map[string]actionBuilder{
			"debug": func(options map[string]any) (contract.Action, error) {
				return actions.NewDebug(out, colours, options)
			},
			"log": func(options map[string]any) (contract.Action, error) {
				return actions.NewLog(log, options)
			},
		},
	}
}

// Load builds every check and action of the pipeline.
// On error the checks already built are closed when they hold resources.
func (l *Loader) Load(pipeline *config.Pipeline) ([]contract.Check, []Binding, error) {
	var loaded []contract.Check
	for _, item := range pipeline.Checks {
		check, err := l.loadCheck(item, pipeline.Options)
		if err != nil {
			Close(loaded)
			return nil, nil, err
		}
		loaded = append(loaded, check)
	}

	bindings := make([]Binding, 0, len(pipeline.Actions))
	for _, item := range pipeline.Actions {
		binding, err := l.loadAction(item, pipeline.Options)
		if err != nil {
			Close(loaded)
			return nil, nil, err
		}
		bindings = append(bindings, binding)
	}
	return loaded, bindings, nil
}

func (l *Loader) loadCheck(item config.Item, global map[string]any) (contract.Check, error) {
	build, ok := l.checks[item.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: check %q", errors.ErrUnknownComponent, item.Type)
	}
	l.log.Info("Loading check", "type", item.Type)
	check, err := build(l.log, item.Merged(global))
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", item.Type, err)
	}
	return check, nil
}

func (l *Loader) loadAction(item config.Item, global map[string]any) (Binding, error) {
	build, ok := l.actions[item.Kind()]
	if !ok {
		return Binding{}, fmt.Errorf("%w: action %q", errors.ErrUnknownComponent, item.Type)
	}
	l.log.Info("Loading action", "type", item.Type)
	action, err := build(item.Merged(global))
	if err != nil {
		return Binding{}, fmt.Errorf("action %s: %w", item.Type, err)
	}
	sets, err := filters.Build(item.For)
	if err != nil {
		return Binding{}, fmt.Errorf("action %s: %w", item.Type, err)
	}
	return Binding{Action: action, Sets: sets}, nil
}

// Close releases the checks holding resources, such as followed files.
func Close(loaded []contract.Check) {
	for _, check := range loaded {
		if closer, ok := check.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
