package broker

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when a handle is used or closed after it was already closed.
	ErrClosed = errors.New("handle already closed")

	// ErrInjected is the cause of failures requested through FailClose and FailCreate.
	ErrInjected = errors.New("injected failure")

	// ErrDependentsOpen is returned when a handle is closed while handles created from it are
	// still open. The handle is closed anyway.
	ErrDependentsOpen = errors.New("dependent handles still open")

	// ErrNoMessage is returned by Receive when the queue is empty.
	ErrNoMessage = errors.New("no message available")
)

type Error struct {
	Op          string
	Kind        Kind
	Name        string
	SourceError error
}

func (e *Error) Error() string {
	if e.SourceError == nil {
		return fmt.Sprintf("%s %v %s", e.Op, e.Kind, e.Name)
	} else {
		return fmt.Sprintf("%s %v %s: %v", e.Op, e.Kind, e.Name, e.Unwrap().Error())
	}
}

func (e *Error) Unwrap() error {
	return e.SourceError
}
