package sticks

import (
	"errors"
	"fmt"
)

// InvariantViolation is returned when a move would leave the pile negative.
type InvariantViolation struct {
	Count  int
	Amount int
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("cannot take %d sticks from a pile of %d", e.Amount, e.Count)
}

// AuthorizationError is a session failure reported by the game server.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// CommunicationError is any other transport or server failure.
type CommunicationError struct {
	Status int
	Err    error
}

func (e *CommunicationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("server responded with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("communication failure: %v", e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

const (
	refreshHint       = "Try to refresh the page."
	communicationText = "Could not communicate with the server"
)

// AlertText is the message shown to the user for err.
func AlertText(err error) string {
	var authErr *AuthorizationError
	var invErr *InvariantViolation
	switch {
	case errors.As(err, &authErr):
		return authErr.Message + " " + refreshHint
	case errors.As(err, &invErr):
		return invErr.Error() + " " + refreshHint
	default:
		return communicationText + " " + refreshHint
	}
}
