//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"subpub/domain"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Check produces messages and keeps the current list of them.
// Run only gathers raw values; Update turns them into messages.
type Check interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) ([]domain.Fields, error)
	Update(batch []domain.Fields) error
	Degrade() bool
	Messages() []*domain.Message
}

// Filter tells whether a message is selected.
type Filter interface {
	Match(msg *domain.Message) bool
}

// Action consumes the messages selected by its filters.
type Action interface {
	Name() string
	Run(ctx context.Context, messages []*domain.Message) error
}
