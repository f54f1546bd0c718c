package service

import (
	"context"

	"github.com/qmuntal/stateless"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

type lifecycleTrigger string

const (
	triggerFirstMessage lifecycleTrigger = "first_message"
	triggerEnd          lifecycleTrigger = "end"
)

// newLifecycle returns the session state machine positioned at status.
// ENDED is terminal.
func newLifecycle(status domain.SessionStatus) *stateless.StateMachine {
	sm := stateless.NewStateMachine(status)

	sm.Configure(domain.SessionStatusCreated).
		Permit(triggerFirstMessage, domain.SessionStatusActive).
		Permit(triggerEnd, domain.SessionStatusEnded)

	sm.Configure(domain.SessionStatusActive).
		Ignore(triggerFirstMessage).
		Permit(triggerEnd, domain.SessionStatusEnded)

	sm.Configure(domain.SessionStatusEnded)

	return sm
}

// nextStatus computes the status reached by firing trigger from current.
// The result is only a plan; the store commits it with a conditional write.
func nextStatus(ctx context.Context, current domain.SessionStatus, trigger lifecycleTrigger) (domain.SessionStatus, error) {
	sm := newLifecycle(current)
	if err := sm.FireCtx(ctx, trigger); err != nil {
		return "", domain.InvalidState("cannot %s a session in status %s", trigger, current)
	}
	state, err := sm.State(ctx)
	if err != nil {
		return "", err
	}
	return state.(domain.SessionStatus), nil
}
