//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/destinyy00/skillswap/domain/event"

	"github.com/google/uuid"
)

// EventSink is one live delivery target, usually a websocket connection.
// Consume must not block: a sink that cannot keep up reports an error
// and the relay moves on.
type EventSink interface {
	Consume(ctx context.Context, e event.Envelope) error
}

// IRegistry maps a verified subject identifier to its routing group,
// the set of connections currently open for that subject.
type IRegistry interface {
	Register(subjectID string, connID uuid.UUID, sink EventSink)
	Unregister(connID uuid.UUID)
	MembersOf(subjectID string) []EventSink
	Count() int
}

// IRelay forwards an event envelope to every member of the target
// subject's routing group. Best effort: no retry, no acknowledgment.
type IRelay interface {
	Forward(ctx context.Context, e event.Envelope)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
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
