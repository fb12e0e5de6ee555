package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies a download failure.
type FailureKind string

const (
	FailTimeout    FailureKind = "timeout"
	FailConnection FailureKind = "connection"
	FailTLS        FailureKind = "tls"
	FailHTTPStatus FailureKind = "http_status"
	FailOther      FailureKind = "other"
)

// DownloadError reports a failed download with its classification. Downloads
// are single attempts; retrying is the caller's decision.
type DownloadError struct {
	Kind   FailureKind
	URL    string
	Status int
	Cause  error
}

// Error returns the error message.
func (e *DownloadError) Error() string {
	switch e.Kind {
	case FailHTTPStatus:
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.Status)
	case FailTimeout:
		return fmt.Sprintf("download %s: timed out", e.URL)
	default:
		return fmt.Sprintf("download %s: %v", e.URL, e.Cause)
	}
}

// Unwrap returns the underlying cause.
func (e *DownloadError) Unwrap() error {
	return e.Cause
}

// classify maps a transport error onto the failure taxonomy.
func classify(url string, err error) *DownloadError {
	kind := FailOther

	var netErr net.Error
	var certErr *tls.CertificateVerificationError
	var recordErr tls.RecordHeaderError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var opErr *net.OpError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = FailTimeout
	case errors.As(err, &certErr), errors.As(err, &recordErr),
		errors.As(err, &unknownAuthority), errors.As(err, &hostnameErr):
		kind = FailTLS
	case errors.As(err, &opErr):
		kind = FailConnection
	}

	return &DownloadError{Kind: kind, URL: url, Cause: err}
}
