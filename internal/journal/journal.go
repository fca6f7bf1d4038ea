// Package journal keeps an optional Postgres record of issued turns and their
// phase transitions. The client works without it; every write failure is
// reported to the caller, which logs and moves on.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

// ErrDisabled is returned by reads on a journal that stores nothing.
var ErrDisabled = errors.New("journal disabled")

// Journal records registrations and transitions.
type Journal interface {
	RecordRegistration(ctx context.Context, reg vqueue.Registration, snap vqueue.TurnSnapshot) error
	RecordTransition(ctx context.Context, code string, from, to turn.Phase, status string) error
	Transitions(ctx context.Context, code string) ([]Transition, error)
	Close()
}

// Transition is one recorded phase change.
type Transition struct {
	ID         string
	Code       string
	From       string
	To         string
	Status     string
	RecordedAt time.Time
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRegistration(context.Context, vqueue.Registration, vqueue.TurnSnapshot) error {
	return nil
}

func (Nop) RecordTransition(context.Context, string, turn.Phase, turn.Phase, string) error {
	return nil
}

func (Nop) Transitions(context.Context, string) ([]Transition, error) {
	return nil, ErrDisabled
}

func (Nop) Close() {}

var (
	_ Journal = Nop{}
	_ Journal = (*Postgres)(nil)
)
