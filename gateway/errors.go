package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches, via errors.Is, any GatewayError carrying a 401.
// Callers use it to send the user back to sign in.
var ErrUnauthorized = errors.New("gateway: credential invalid")

// GatewayError is returned for every failed exchange. StatusCode is zero
// when no response was received.
type GatewayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gateway: %s", e.Message)
	}
	return fmt.Sprintf("gateway: status %d: %s", e.StatusCode, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
