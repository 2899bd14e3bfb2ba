// server/internal/dispatch/lifecycle.go
package dispatch

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// States of a single dispatch.
const (
	StateReceived     = "received"
	StateValidated    = "validated"
	StateQueued       = "queued"
	StateReceipted    = "receipted"
	StateAcknowledged = "acknowledged"
	StateRejected     = "rejected"
	StateFailed       = "failed"
)

const (
	EventValidate    = "validate"
	EventReject      = "reject"
	EventPublish     = "publish"
	EventFail        = "fail"
	EventReceipt     = "receipt"
	EventAcknowledge = "acknowledge"
)

// lifecycle tracks one dispatch through
// received -> validated -> queued -> receipted -> acknowledged,
// with rejected reachable before publishing and failed only from a publish attempt.
type lifecycle struct {
	*fsm.FSM
}

func newLifecycle(logger *zap.Logger) *lifecycle {
	events := fsm.Events{
		{Name: EventValidate, Src: []string{StateReceived}, Dst: StateValidated},
		{Name: EventReject, Src: []string{StateReceived, StateValidated}, Dst: StateRejected},
		{Name: EventPublish, Src: []string{StateValidated}, Dst: StateQueued},
		{Name: EventFail, Src: []string{StateValidated}, Dst: StateFailed},
		{Name: EventReceipt, Src: []string{StateQueued}, Dst: StateReceipted},
		{Name: EventAcknowledge, Src: []string{StateReceipted}, Dst: StateAcknowledged},
	}

	callbacks := fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			logger.Debug("dispatch transition",
				zap.String("event", e.Event),
				zap.String("from", e.Src),
				zap.String("to", e.Dst),
			)
		},
	}

	return &lifecycle{FSM: fsm.NewFSM(StateReceived, events, callbacks)}
}

// fire moves to the next state. The transitions above are the only ones the
// service issues, so an error here is a bug in the service. A cancelled request
// context must not stop the record of a publish that already happened.
func (l *lifecycle) fire(ctx context.Context, event string) error {
	return l.Event(context.WithoutCancel(ctx), event)
}
