package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFlightNotFound is returned when the Flight service has no flight
	// for the requested number.
	ErrFlightNotFound = errors.New("flight not found")
	// ErrTicketNotFound is returned when a ticket does not exist or does not
	// belong to the requesting user.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrPrivilegeNotFound is returned when the Bonus service reports no
	// profile for the user.
	ErrPrivilegeNotFound = errors.New("privilege not found")
)

// ServiceUnavailableError is the uniform unavailability signal raised when a
// downstream call fails at the transport level, returns a 5xx, or is rejected
// by an open circuit breaker.
type ServiceUnavailableError struct {
	Service string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable", e.Service)
}

func NewServiceUnavailable(service string) error {
	return &ServiceUnavailableError{Service: service}
}

// IsUnavailable reports whether err carries the unavailability signal.
func IsUnavailable(err error) bool {
	var target *ServiceUnavailableError
	return errors.As(err, &target)
}
