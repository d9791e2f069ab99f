package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Kind identifies why a page could not be fetched.
type Kind string

const (
	KindInvalidURL        Kind = "InvalidUrl"
	KindNotFound          Kind = "NotFound"
	KindForbidden         Kind = "Forbidden"
	KindUnauthorized      Kind = "Unauthorized"
	KindServerUnavailable Kind = "ServerUnavailable"
	KindServerError       Kind = "ServerError"
	KindTimeout           Kind = "Timeout"
	KindConnectionRefused Kind = "ConnectionRefused"
	KindDNSFailure        Kind = "DnsFailure"
	KindOther             Kind = "Other"
)

// Error categories grouping the kinds above.
const (
	CategoryInvalidInput     = "InvalidInput"
	CategoryTransportFailure = "TransportFailure"
	CategoryRemoteRejection  = "RemoteRejection"
	CategoryEmptyResponse    = "EmptyResponse"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errEmptyBody        = errors.New("empty response body")
)

// FetchError is returned for every failed fetch. Message is meant to be shown
// to the end user as is.
type FetchError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Category maps the error onto the coarse failure taxonomy used by callers.
func (e *FetchError) Category() string {
	switch {
	case e.Kind == KindInvalidURL:
		return CategoryInvalidInput
	case errors.Is(e.Err, errEmptyBody):
		return CategoryEmptyResponse
	case e.StatusCode >= http.StatusBadRequest:
		return CategoryRemoteRejection
	default:
		return CategoryTransportFailure
	}
}

func invalidURLError(rawURL string, err error) *FetchError {
	return &FetchError{
		Kind:    KindInvalidURL,
		Message: fmt.Sprintf("Invalid URL %q: only absolute http or https URLs can be audited", rawURL),
		Err:     err,
	}
}

// statusError maps a rejected HTTP status onto a FetchError.
func statusError(code int) *FetchError {
	fe := &FetchError{StatusCode: code, Err: fmt.Errorf("unexpected status %d", code)}
	switch {
	case code == http.StatusUnauthorized:
		fe.Kind = KindUnauthorized
		fe.Message = "Authentication required (401). The page cannot be accessed without logging in."
	case code == http.StatusForbidden:
		fe.Kind = KindForbidden
		fe.Message = "Access forbidden (403). The website is blocking automated requests."
	case code == http.StatusNotFound:
		fe.Kind = KindNotFound
		fe.Message = "Page not found (404). Please check the URL and try again."
	case code == http.StatusServiceUnavailable:
		fe.Kind = KindServerUnavailable
		fe.Message = "Service unavailable (503). The website is temporarily down, please try again later."
	case code >= http.StatusInternalServerError:
		fe.Kind = KindServerError
		fe.Message = fmt.Sprintf("Server error (%d). The website encountered an internal problem.", code)
	default:
		fe.Kind = KindOther
		fe.Message = fmt.Sprintf("Request rejected by the website (%d).", code)
	}
	return fe
}

// transportError classifies client and body read failures.
func transportError(err error, timeout time.Duration, maxRedirects int) *FetchError {
	var (
		dnsErr *net.DNSError
		netErr net.Error
	)
	switch {
	case errors.Is(err, errTooManyRedirects):
		return &FetchError{
			Kind:    KindOther,
			Message: fmt.Sprintf("Too many redirects (more than %d). The page may be stuck in a redirect loop.", maxRedirects),
			Err:     err,
		}
	case errors.As(err, &dnsErr):
		return &FetchError{
			Kind:    KindDNSFailure,
			Message: "Domain not found. Could not resolve the host name, please check the URL.",
			Err:     err,
		}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &FetchError{
			Kind:    KindConnectionRefused,
			Message: "Connection refused. The server is not accepting connections.",
			Err:     err,
		}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("Request timed out after %s. The website took too long to respond.", timeout),
			Err:     err,
		}
	default:
		return &FetchError{
			Kind:    KindOther,
			Message: fmt.Sprintf("Failed to fetch the page: %v", err),
			Err:     err,
		}
	}
}
