package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"subpub/contract"
	"subpub/domain"
	"subpub/filters"
	"subpub/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMessage(t *testing.T, body string, weight int) *domain.Message {
	t.Helper()
	msg, err := domain.NewMessage(domain.Fields{
		domain.FieldType:     "test",
		domain.FieldName:     "svc",
		domain.FieldBody:     body,
		domain.FieldLocation: "here",
		domain.FieldWeight:   weight,
	})
	require.NoError(t, err)
	return msg
}

type clock struct {
	at time.Time
}

func (c *clock) now() time.Time { return c.at }

func (c *clock) advance(d time.Duration) { c.at = c.at.Add(d) }

func newTestEngine(checks []contract.Check, bindings []Binding) (*Engine, *clock) {
	c := &clock{at: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	engine := NewEngine(logs.GetLoggerFromLevel(slog.LevelDebug), time.Second, checks, bindings)
	engine.now = c.now
	return engine, c
}

func TestEngine_Step_RunsDueCheckAndFeedsActions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	msg := newMessage(t, "hello", 1)
	batch := []domain.Fields{{domain.FieldBody: "hello"}}

	check := mocks.NewMockCheck(ctrl)
	check.EXPECT().Name().Return("static").AnyTimes()
	check.EXPECT().Interval().Return(10 * time.Second).AnyTimes()
	check.EXPECT().Run(gomock.Any()).Return(batch, nil).Times(1)
	check.EXPECT().Update(batch).Return(nil).Times(1)
	check.EXPECT().Messages().Return([]*domain.Message{msg}).Times(1)

	var received []*domain.Message
	action := mocks.NewMockAction(ctrl)
	action.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []*domain.Message) error {
			received = messages
			return nil
		}).Times(1)

	engine, _ := newTestEngine([]contract.Check{check}, []Binding{{Action: action}})

	// When the engine steps for the first time
	engine.Step(ctx)

	// Then the check ran and the action got its messages
	req.Equal([]*domain.Message{msg}, received)
}

func TestEngine_Step_DegradesOnceBetweenRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	batch := []domain.Fields{{domain.FieldBody: "hello"}}

	check := mocks.NewMockCheck(ctrl)
	check.EXPECT().Name().Return("static").AnyTimes()
	check.EXPECT().Interval().Return(10 * time.Second).AnyTimes()
	check.EXPECT().Messages().Return(nil).AnyTimes()

	gomock.InOrder(
		check.EXPECT().Run(gomock.Any()).Return(batch, nil),
		check.EXPECT().Update(batch).Return(nil),
		// Not due: degraded once only
		check.EXPECT().Degrade().Return(true),
		// Due again
		check.EXPECT().Run(gomock.Any()).Return(batch, nil),
		check.EXPECT().Update(batch).Return(nil),
		check.EXPECT().Degrade().Return(true),
	)

	action := mocks.NewMockAction(ctrl)
	action.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil).Times(6)

	engine, c := newTestEngine([]contract.Check{check}, []Binding{{Action: action}})

	engine.Step(ctx) // run
	c.advance(time.Second)
	engine.Step(ctx) // degrade
	c.advance(time.Second)
	engine.Step(ctx) // already degraded
	c.advance(8 * time.Second)
	engine.Step(ctx) // run
	c.advance(time.Second)
	engine.Step(ctx) // degrade
	c.advance(time.Second)
	engine.Step(ctx) // already degraded
}

func TestEngine_Step_EmptyRunSkipsUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	check := mocks.NewMockCheck(ctrl)
	check.EXPECT().Name().Return("followfile").AnyTimes()
	check.EXPECT().Interval().Return(10 * time.Second).AnyTimes()
	check.EXPECT().Messages().Return(nil).AnyTimes()
	check.EXPECT().Run(gomock.Any()).Return(nil, nil).Times(1)
	check.EXPECT().Update(gomock.Any()).Times(0)
	check.EXPECT().Degrade().Return(true).Times(1)

	engine, c := newTestEngine([]contract.Check{check}, nil)

	engine.Step(ctx)
	c.advance(time.Second)
	engine.Step(ctx)
}

func TestEngine_Step_FailingCheckIsRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	batch := []domain.Fields{{domain.FieldBody: "x"}}

	check := mocks.NewMockCheck(ctrl)
	check.EXPECT().Name().Return("kernel").AnyTimes()
	check.EXPECT().Interval().Return(10 * time.Second).AnyTimes()
	check.EXPECT().Messages().Return(nil).AnyTimes()
	check.EXPECT().Degrade().Times(0)
	gomock.InOrder(
		check.EXPECT().Run(gomock.Any()).Return(nil, fmt.Errorf("boom")),
		check.EXPECT().Run(gomock.Any()).Return(batch, nil),
		check.EXPECT().Update(batch).Return(fmt.Errorf("invalid")),
		check.EXPECT().Run(gomock.Any()).Return(batch, nil),
		check.EXPECT().Update(batch).Return(nil),
	)

	action := mocks.NewMockAction(ctrl)
	action.EXPECT().Name().Return("debug").AnyTimes()
	action.EXPECT().Run(gomock.Any(), gomock.Any()).Return(fmt.Errorf("action failed")).Times(3)

	engine, c := newTestEngine([]contract.Check{check}, []Binding{{Action: action}})

	// Failures are not successful runs, so the check stays due
	engine.Step(ctx)
	c.advance(time.Second)
	engine.Step(ctx)
	c.advance(time.Second)
	engine.Step(ctx)
}

func TestEngine_Step_AppliesFilterSets(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	light := newMessage(t, "light", 1)
	heavy := newMessage(t, "heavy", 9)

	check := mocks.NewMockCheck(ctrl)
	check.EXPECT().Name().Return("static").AnyTimes()
	check.EXPECT().Interval().Return(time.Minute).AnyTimes()
	check.EXPECT().Run(gomock.Any()).Return(nil, nil)
	check.EXPECT().Messages().Return([]*domain.Message{light, heavy})

	heavyOnly, err := filters.NewWeight(9)
	req.NoError(err)

	var filtered, unfiltered []*domain.Message
	first := mocks.NewMockAction(ctrl)
	first.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m []*domain.Message) error {
		filtered = m
		return nil
	})
	second := mocks.NewMockAction(ctrl)
	second.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m []*domain.Message) error {
		unfiltered = m
		return nil
	})

	engine, _ := newTestEngine([]contract.Check{check}, []Binding{
		{Action: first, Sets: filters.Sets{{heavyOnly}}},
		{Action: second},
	})

	engine.Step(ctx)

	req.Equal([]*domain.Message{heavy}, filtered)
	req.Equal([]*domain.Message{light, heavy}, unfiltered)
}

func TestEngine_Run_StopsOnCancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	check := mocks.NewMockCheck(ctrl)
	check.EXPECT().Name().Return("static").AnyTimes()
	check.EXPECT().Interval().Return(time.Hour).AnyTimes()
	check.EXPECT().Run(gomock.Any()).Return(nil, nil).Times(1)
	check.EXPECT().Degrade().Return(true).MaxTimes(1)
	check.EXPECT().Messages().Return(nil).AnyTimes()

	engine := NewEngine(slog.Default(), 10*time.Millisecond, []contract.Check{check}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := engine.Run(ctx)

	req.ErrorIs(err, context.DeadlineExceeded)
}
