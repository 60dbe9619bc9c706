package gateway

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the backend rejects the credential.
// The session has already been cleared and the login redirect signaled by
// the time a caller sees this error.
var ErrSessionExpired = errors.New("session expired, please log in again")

// RequestError is any non-2xx backend response other than a 401. Detail
// carries the backend's own message when the error body had one.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return e.Detail
}

// IsRequestError unwraps a RequestError from an error chain
func IsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

func genericDetail(status int) string {
	return fmt.Sprintf("Error %d", status)
}
