package express

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransportClass groups transport failures for logging and metrics
type TransportClass string

const (
	TransportConnect     TransportClass = "connect"      // Dial failure, refusal or timeout
	TransportClientError TransportClass = "client_error" // HTTP 4xx
	TransportServerError TransportClass = "server_error" // HTTP 5xx
	TransportGeneric     TransportClass = "generic"      // Anything else, including unreadable bodies
)

// TransportError is a failure to complete the HTTP exchange with the vendor.
// It never reaches callers as an error value; its message becomes the
// client's error message and the operation reports a transport failure.
type TransportError struct {
	Class      TransportClass
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Class {
	case TransportClientError:
		return fmt.Sprintf("client error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case TransportServerError:
		return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case TransportConnect:
		return fmt.Sprintf("connect error: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return "transport error"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classifyDoError classifies an error returned by HTTPClient.Do.
// Timeouts count as connect failures.
func classifyDoError(err error) *TransportError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Class: TransportConnect, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &TransportError{Class: TransportConnect, Err: err}
	}
	return &TransportError{Class: TransportGeneric, Err: err}
}

// classifyStatus returns a transport error for 4xx and 5xx responses
func classifyStatus(code int) *TransportError {
	switch {
	case code >= 500:
		return &TransportError{Class: TransportServerError, StatusCode: code}
	case code >= 400:
		return &TransportError{Class: TransportClientError, StatusCode: code}
	}
	return nil
}
