package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies a per-URL fetch failure. The frontier treats every
// kind the same way (log, mark visited, continue) but the kind is preserved
// for diagnostics and metrics.
type FailureKind string

const (
	// FailTimeout means the page-load timeout elapsed before the page was
	// rendered.
	FailTimeout FailureKind = "timeout"

	// FailNetwork covers transport-level failures: DNS, TCP, TLS, or a
	// dropped connection mid-body.
	FailNetwork FailureKind = "network"

	// FailHTTPStatus means the server answered with a non-success status.
	FailHTTPStatus FailureKind = "http_status"

	// FailBodyTooLarge means the response exceeded the configured body cap.
	FailBodyTooLarge FailureKind = "body_too_large"

	// FailRender covers browser-side failures that are neither timeouts nor
	// transport errors (crashed tab, navigation error).
	FailRender FailureKind = "render"
)

// FetchError is the typed, recoverable failure returned for a single URL.
// It never aborts the run; the frontier logs it and moves on.
type FetchError struct {
	// Kind classifies the failure.
	Kind FailureKind

	// URL is the URL whose fetch failed.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Kind, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// newFetchError wraps err for url, classifying timeouts by inspecting the
// error chain so callers get FailTimeout whether the deadline fired in the
// context, the dialer, or the HTTP client.
func newFetchError(kind FailureKind, url string, err error) *FetchError {
	if isTimeout(err) {
		kind = FailTimeout
	}
	return &FetchError{Kind: kind, URL: url, Err: err}
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
