package supervisor

import (
	"errors"
	"fmt"

	"github.com/jmgilman/overseer/internal/model"
)

// Sentinel errors for supervisor operations.
var (
	ErrInstanceNotFound     = errors.New("instance not found")
	ErrNoPendingCommand     = errors.New("no pending command")
	ErrSessionUnavailable   = errors.New("session unavailable")
	ErrAuthenticationFailed = errors.New("agent authentication failed")
	ErrCreditsExhausted     = errors.New("agent credits exhausted")
	ErrInstanceBusy         = errors.New("instance is busy")
	ErrRestartInProgress    = errors.New("restart already in progress")
)

// BusyError is returned when an operation requires an idle instance.
type BusyError struct {
	InstanceID string
	Status     model.Status
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("instance %s is %s", e.InstanceID, e.Status)
}

func (e *BusyError) Unwrap() error {
	return ErrInstanceBusy
}
