package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/tsinghua-lau/transgo/i18n"
)

// The error taxonomy below is the single error surface shared by the
// adapters, the translation facade, and the hover controller. Messages are
// resolved through i18n at format time so errors created before display
// still localize correctly.

// InputError rejects empty or whitespace-only input before any dispatch.
type InputError struct{}

func (*InputError) Error() string { return i18n.T("input text must not be empty") }

// ErrEmptyInput is the canonical InputError instance.
var ErrEmptyInput = &InputError{}

// ConfigError reports missing or incomplete provider credentials. It is
// raised before any network call is attempted.
type ConfigError struct {
	Provider string
	Message  string
}

func (e *ConfigError) Error() string { return e.Message }

// TransportError reports a failed HTTP exchange: a timeout or a generic
// network failure. It never carries a provider rejection.
type TransportError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return i18n.T("request timed out, check your network connection")
	}
	return fmt.Sprintf("%s: %v", i18n.T("network request failed"), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError is a provider-specific rejection, carrying the provider's
// own error code and a display-ready message.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
}

func (e *ProviderError) Error() string { return e.Message }

// FormatError reports a response body that matched none of the shapes the
// adapter knows how to parse.
type FormatError struct {
	Provider string
}

func (e *FormatError) Error() string { return i18n.T("malformed translation API response") }

// RateLimitError is synthesized locally by the hover controller when its
// throughput quota is exhausted; it never reflects a network response.
type RateLimitError struct {
	RetryIn time.Duration
}

func (e *RateLimitError) Error() string {
	secs := int(math.Ceil(e.RetryIn.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf(i18n.T("rate limited, retry in %d seconds"), secs)
}

// UnsupportedModeError marks an operation a provider cannot serve, such as
// the AI provider being used from the hover path.
type UnsupportedModeError struct{}

func (*UnsupportedModeError) Error() string {
	return i18n.T("hover translation does not support the AI provider, choose another provider")
}

// ErrHoverAIUnsupported is the canonical UnsupportedModeError instance.
var ErrHoverAIUnsupported = &UnsupportedModeError{}

// transportError classifies an http.Client failure into a TransportError,
// marking client and context timeouts.
func transportError(providerID string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		timeout = true
	}
	return &TransportError{Provider: providerID, Timeout: timeout, Err: err}
}
