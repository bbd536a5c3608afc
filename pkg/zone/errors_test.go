package zone

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		subtype NetworkErrorSubtype
	}{
		{
			name: "net timeout inside url error",
			err: &url.Error{Op: "Get", URL: "http://10.0.0.5/", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: &timeoutError{},
			}},
			subtype: NetworkErrorTimeout,
		},
		{
			name:    "context deadline",
			err:     &url.Error{Op: "Post", URL: "http://10.0.0.5/command/stop/0", Err: context.DeadlineExceeded},
			subtype: NetworkErrorTimeout,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Get", URL: "http://10.0.0.5/", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}},
			subtype: NetworkErrorConnectionRefused,
		},
		{
			name: "host unreachable",
			err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH,
			},
			subtype: NetworkErrorHostUnreachable,
		},
		{
			name: "network unreachable",
			err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH,
			},
			subtype: NetworkErrorNetworkUnreachable,
		},
		{
			name:    "dns",
			err:     &net.DNSError{Err: "no such host", Name: "zone.local", IsNotFound: true},
			subtype: NetworkErrorDNS,
		},
		{
			name:    "anything else",
			err:     errors.New("connection reset"),
			subtype: NetworkErrorGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := classifyNetworkError(tt.err, "10.0.0.5")
			if apiErr == nil {
				t.Fatal("classifyNetworkError() = nil")
			}
			if apiErr.Type != ErrTypeConnection {
				t.Errorf("Type = %v, want %v", apiErr.Type, ErrTypeConnection)
			}
			if apiErr.NetworkSubtype != tt.subtype {
				t.Errorf("NetworkSubtype = %v, want %v", apiErr.NetworkSubtype, tt.subtype)
			}
			if apiErr.HubIP != "10.0.0.5" {
				t.Errorf("HubIP = %q", apiErr.HubIP)
			}
			if !errors.Is(apiErr, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}

	if classifyNetworkError(nil, "") != nil {
		t.Error("classifyNetworkError(nil) should be nil")
	}
}

func TestAPIError_Umbrella(t *testing.T) {
	errs := []error{
		classifyNetworkError(errors.New("boom"), "10.0.0.5"),
		newStatusError(404, "10.0.0.5"),
		newParseError(errors.New("bad json"), "10.0.0.5"),
	}
	for _, err := range errs {
		if !errors.Is(err, ErrAPI) {
			t.Errorf("%v should match ErrAPI", err)
		}
		wrapped := fmt.Errorf("open group: %w", err)
		if !IsAPIError(wrapped) {
			t.Errorf("wrapped %v should still be an API error", err)
		}
	}

	if IsAPIError(errors.New("plain")) {
		t.Error("plain errors are not API errors")
	}
}

func TestPredicates(t *testing.T) {
	conn := classifyNetworkError(context.DeadlineExceeded, "")
	status := newStatusError(500, "")
	parse := newParseError(errors.New("x"), "")

	if !IsConnectionError(conn) || IsConnectionError(status) || IsConnectionError(parse) {
		t.Error("IsConnectionError mismatch")
	}
	if !IsResponseStatusError(status) || IsResponseStatusError(conn) {
		t.Error("IsResponseStatusError mismatch")
	}
	if !IsParseError(parse) || IsParseError(status) {
		t.Error("IsParseError mismatch")
	}
	if !IsTimeout(conn) || IsTimeout(status) {
		t.Error("IsTimeout mismatch")
	}
	if StatusCode(status) != 500 || StatusCode(conn) != 0 || StatusCode(errors.New("x")) != 0 {
		t.Error("StatusCode mismatch")
	}
}

func TestAPIError_Error(t *testing.T) {
	err := newStatusError(404, "10.0.0.5")
	want := "Response Status Error: unexpected status code: 404 (hub 10.0.0.5)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	conn := classifyNetworkError(errors.New("reset"), "")
	if !strings.HasSuffix(conn.Error(), ": reset") {
		t.Errorf("Error() = %q, should include cause", conn.Error())
	}
}

func TestErrorType_String(t *testing.T) {
	if ErrTypeConnection.String() != "Connection Error" {
		t.Error(ErrTypeConnection.String())
	}
	if ErrorType(99).String() != "ErrorType(99)" {
		t.Error(ErrorType(99).String())
	}
}

func TestShortMessageAndHint(t *testing.T) {
	timeout := classifyNetworkError(context.DeadlineExceeded, "10.0.0.5")
	if got := ShortMessage(timeout); got != "Zone not responding (timeout)" {
		t.Errorf("ShortMessage(timeout) = %q", got)
	}
	if !strings.Contains(TroubleshootingHint(timeout), "--timeout") {
		t.Error("timeout hint should suggest --timeout")
	}

	status := newStatusError(404, "10.0.0.5")
	if got := ShortMessage(status); got != "Zone error (HTTP 404)" {
		t.Errorf("ShortMessage(status) = %q", got)
	}
	if !strings.Contains(TroubleshootingHint(status), "group number") {
		t.Error("404 hint should mention the group number")
	}

	plain := errors.New("plain")
	if ShortMessage(plain) != "plain" {
		t.Error("ShortMessage should fall back to Error()")
	}
}
