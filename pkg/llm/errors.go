package llm

import (
	"errors"
	"fmt"
)

// FailureKind separates failures of the provider itself from failures to
// reach it.
type FailureKind string

const (
	// KindProvider means the provider answered but refused or errored
	// (bad status, malformed or empty reply).
	KindProvider FailureKind = "provider"

	// KindNetwork means the request never got a response (DNS, connection,
	// timeout, cancellation).
	KindNetwork FailureKind = "network"
)

// CompletionError is returned by providers when a completion fails.
type CompletionError struct {
	Kind FailureKind

	// StatusCode is the HTTP status for provider failures, 0 otherwise
	StatusCode int

	Err error
}

func (e *CompletionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failure (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could plausibly succeed.
// Network failures and provider-side throttling or 5xx answers qualify.
func (e *CompletionError) Retryable() bool {
	if e.Kind == KindNetwork {
		return true
	}
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *CompletionError {
	return &CompletionError{Kind: KindNetwork, Err: err}
}

// NewProviderError wraps a failure reported by the provider.
func NewProviderError(statusCode int, err error) *CompletionError {
	return &CompletionError{Kind: KindProvider, StatusCode: statusCode, Err: err}
}

// AsCompletionError extracts a *CompletionError from err. Errors that are not
// already typed are classified as provider failures.
func AsCompletionError(err error) *CompletionError {
	if err == nil {
		return nil
	}
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce
	}
	return NewProviderError(0, err)
}
