package integrations

import (
	"net/http"
	"net/url"
	"time"

	errs "github.com/matzehuels/skillcat/pkg/errors"
)

const httpTimeout = 30 * time.Second

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// Outcome is the tagged result of one upstream call.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	RateLimited
	Transient
	Malformed
	Unauthorized
)

var outcomeNames = [...]string{"found", "not_found", "rate_limited", "transient", "malformed", "unauthorized"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Classify maps the error returned by an upstream call to its Outcome.
// A nil error is Found. A rejected content path is Malformed. Errors
// without a known code, including context cancellation, are Transient.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Found
	case errs.Is(err, errs.ErrCodeNotFound):
		return NotFound
	case errs.Is(err, errs.ErrCodeRateLimited):
		return RateLimited
	case errs.Is(err, errs.ErrCodeUnauthorized):
		return Unauthorized
	case errs.Is(err, errs.ErrCodeMalformedData), errs.Is(err, errs.ErrCodeInvalidPath):
		return Malformed
	default:
		return Transient
	}
}

// Fatal reports whether an outcome should abort the whole current unit of
// work (a collector's pagination) rather than a single item.
func (o Outcome) Fatal() bool {
	return o == RateLimited || o == Transient || o == Unauthorized
}
