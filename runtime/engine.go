// Package runtime drives the pipeline: it runs checks when they are due,
// degrades their messages in between, and hands the selected messages to
// every action. It holds no message rules itself.
package runtime

import (
	"context"
	"log/slog"
	"subpub/contract"
	"subpub/domain"
	"subpub/filters"
	"time"
)

// Binding ties an action to the filter sets selecting its messages.
type Binding struct {
	Action contract.Action
	Sets   filters.Sets
}

type checkSlot struct {
	check    contract.Check
	lastRun  time.Time
	degraded bool
}

type Engine struct {
	log      *slog.Logger
	tick     time.Duration
	checks   []*checkSlot
	bindings []Binding
	now      func() time.Time
}

func NewEngine(log *slog.Logger, tick time.Duration, checks []contract.Check, bindings []Binding) *Engine {
	slots := make([]*checkSlot, 0, len(checks))
	for _, check := range checks {
		slots = append(slots, &checkSlot{check: check})
	}
	return &Engine{
		log:      log,
		tick:     tick,
		checks:   slots,
		bindings: bindings,
		now:      time.Now,
	}
}

// Run steps the pipeline on every tick until the context is canceled.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("Starting engine", "checks", len(e.checks), "actions", len(e.bindings), "tick", e.tick)
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	e.Step(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Step(ctx)
		}
	}
}

// Step runs one pass of the pipeline.
// A check is due once its interval has elapsed since its last successful
// run. Between runs its messages degrade once. Failures are logged and
// never stop the pass.
func (e *Engine) Step(ctx context.Context) {
	now := e.now()
	var messages []*domain.Message
	for _, slot := range e.checks {
		check := slot.check
		if slot.lastRun.IsZero() || now.Sub(slot.lastRun) >= check.Interval() {
			e.runCheck(ctx, slot, now)
		} else if !slot.degraded {
			slot.degraded = check.Degrade()
		}
		messages = append(messages, check.Messages()...)
	}

	for _, binding := range e.bindings {
		selected := binding.Sets.Apply(messages)
		if err := binding.Action.Run(ctx, selected); err != nil {
			e.log.Error("Action failed", "action", binding.Action.Name(), "error", err)
		}
	}
}

func (e *Engine) runCheck(ctx context.Context, slot *checkSlot, now time.Time) {
	check := slot.check
	batch, err := check.Run(ctx)
	if err != nil {
		e.log.Error("Check failed", "check", check.Name(), "error", err)
		return
	}
	if len(batch) > 0 {
		if err := check.Update(batch); err != nil {
			e.log.Error("Check update failed", "check", check.Name(), "error", err)
			return
		}
	}
	e.log.Debug("Check ran", "check", check.Name(), "messages", len(batch))
	slot.lastRun = now
	slot.degraded = false
}
