package zone

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrAPI is matched by every error returned from a hub request, so callers
// can use errors.Is(err, zone.ErrAPI) without caring about the subtype.
var ErrAPI = errors.New("leviosa api error")

// ErrorType represents the category of a hub communication error
type ErrorType int

const (
	// ErrTypeConnection indicates a transport failure or timeout talking to the hub
	ErrTypeConnection ErrorType = iota
	// ErrTypeResponseStatus indicates the hub answered a GET with a non-200 status
	ErrTypeResponseStatus
	// ErrTypeParse indicates the hub answered 200 with a body that is not JSON
	ErrTypeParse
)

// NetworkErrorSubtype refines ErrTypeConnection
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeResponseStatus:
		return "Response Status Error"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError is returned by Hub.Get and Hub.Post and by the group commands
// that delegate to them.
type APIError struct {
	Type           ErrorType
	Message        string
	StatusCode     int // set for ErrTypeResponseStatus
	Err            error
	NetworkSubtype NetworkErrorSubtype
	HubIP          string
}

// Error implements the error interface
func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.HubIP != "" {
		fmt.Fprintf(&b, " (hub %s)", e.HubIP)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports ErrAPI as part of every APIError's chain.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// classifyNetworkError turns a transport error into a connection APIError with
// the most specific subtype it can find.
func classifyNetworkError(err error, hubIP string) *APIError {
	if err == nil {
		return nil
	}

	apiErr := &APIError{
		Type:           ErrTypeConnection,
		Message:        "failed to communicate with hub",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		HubIP:          hubIP,
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		apiErr.Message = "request timed out"
		apiErr.NetworkSubtype = NetworkErrorTimeout
		return apiErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		apiErr.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
		apiErr.NetworkSubtype = NetworkErrorDNS
		return apiErr
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			apiErr.Message = "hub refused connection"
			apiErr.NetworkSubtype = NetworkErrorConnectionRefused
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			apiErr.Message = "host unreachable"
			apiErr.NetworkSubtype = NetworkErrorHostUnreachable
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			apiErr.Message = "network unreachable"
			apiErr.NetworkSubtype = NetworkErrorNetworkUnreachable
		}
		return apiErr
	}

	return apiErr
}

func newStatusError(statusCode int, hubIP string) *APIError {
	return &APIError{
		Type:       ErrTypeResponseStatus,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
		HubIP:      hubIP,
	}
}

func newParseError(err error, hubIP string) *APIError {
	return &APIError{
		Type:    ErrTypeParse,
		Message: "failed to parse hub response",
		Err:     err,
		HubIP:   hubIP,
	}
}

// IsAPIError reports whether err came from a hub request
func IsAPIError(err error) bool {
	return errors.Is(err, ErrAPI)
}

// IsConnectionError reports whether err is a transport failure or timeout
func IsConnectionError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrTypeConnection
}

// IsResponseStatusError reports whether err is a non-200 GET response
func IsResponseStatusError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrTypeResponseStatus
}

// IsParseError reports whether err is a malformed hub response body
func IsParseError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrTypeParse
}

// IsTimeout reports whether err is a connection error caused by a timeout
func IsTimeout(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.Type == ErrTypeConnection &&
		apiErr.NetworkSubtype == NetworkErrorTimeout
}

// StatusCode returns the HTTP status carried by a response status error, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ShortMessage returns a concise, user-facing description of err
func ShortMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Type {
	case ErrTypeConnection:
		switch apiErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Zone not responding (timeout)"
		case NetworkErrorConnectionRefused:
			return "Zone refused connection"
		case NetworkErrorDNS:
			return "Cannot resolve zone hostname"
		case NetworkErrorHostUnreachable:
			return "Zone unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable"
		default:
			return "Network error - check connection"
		}
	case ErrTypeResponseStatus:
		return fmt.Sprintf("Zone error (HTTP %d)", apiErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse zone response"
	default:
		return apiErr.Message
	}
}

// TroubleshootingHint returns multi-line advice for err, for CLI display
func TroubleshootingHint(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch apiErr.Type {
	case ErrTypeConnection:
		hint := []string{
			"Could not talk to the zone.",
			"Troubleshooting:",
			"  • Check that the zone is powered on and its LED shows a network connection",
			"  • Verify you are on the same network segment as the zone",
		}
		switch apiErr.NetworkSubtype {
		case NetworkErrorTimeout:
			hint = append(hint, "  • Try a longer --timeout")
		case NetworkErrorConnectionRefused, NetworkErrorHostUnreachable:
			hint = append(hint, "  • The zone may have a new address - run 'leviosa scan' again")
		}
		return strings.Join(hint, "\n")

	case ErrTypeResponseStatus:
		if apiErr.StatusCode == 404 {
			return "The zone does not know this endpoint. Check the group number."
		}
		return fmt.Sprintf("The zone returned HTTP %d. Try power cycling the zone.", apiErr.StatusCode)

	case ErrTypeParse:
		return "The zone answered with an unexpected document. Check the firmware version."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
