package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrorKind is the closed set of scraper failure categories. Every failure
// that crosses a package boundary in this subsystem is one of these.
type ErrorKind string

const (
	KindConnectionError     ErrorKind = "ConnectionError"
	KindHTTPError           ErrorKind = "HttpError"
	KindTimeout             ErrorKind = "Timeout"
	KindNoRecipeFound       ErrorKind = "NoRecipeFoundError"
	KindNoSchemaFound       ErrorKind = "NoSchemaFoundInWildMode"
	KindSiteNotImplemented  ErrorKind = "WebsiteNotImplementedError"
	KindAuthRequired        ErrorKind = "AuthenticationRequired"
	KindAuthFailed          ErrorKind = "AuthenticationFailed"
	KindUnsupportedAuthSite ErrorKind = "UnsupportedAuthSite"
	KindUnsupportedPlatform ErrorKind = "UnsupportedPlatform"
	KindException           ErrorKind = "Exception"
)

// Sentinel errors for contract violations. These are the only paths that
// surface as plain errors instead of a ScraperError value.
var (
	ErrAuthFlowInFlight = errors.New("authentication flow already in flight")
	ErrBridgeDestroyed  = errors.New("authentication bridge destroyed")
	ErrNoRecipesParsed  = errors.New("no recipes could be parsed")
)

// ScraperError is the typed error every operation in this subsystem
// returns on failure. Host, when set, is always the normalized hostname
// (lowercase, no "www.").
type ScraperError struct {
	Kind    ErrorKind
	Message string
	Host    string
	Err     error // wrapped original error
}

func (e *ScraperError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ScraperError) Unwrap() error {
	return e.Err
}

// NewScraperError creates a ScraperError without host context.
func NewScraperError(kind ErrorKind, message string, err error) *ScraperError {
	return &ScraperError{Kind: kind, Message: message, Err: err}
}

// NewHostError creates a ScraperError bound to the host of rawURL.
// rawURL may be a full URL or a bare hostname.
func NewHostError(kind ErrorKind, message, rawURL string, err error) *ScraperError {
	return &ScraperError{Kind: kind, Message: message, Host: NormalizeHost(rawURL), Err: err}
}

// AsScraperError extracts a *ScraperError from an error chain, wrapping
// foreign errors as KindException so callers always get a kind to map.
func AsScraperError(err error) *ScraperError {
	if err == nil {
		return nil
	}
	var se *ScraperError
	if errors.As(err, &se) {
		return se
	}
	return &ScraperError{Kind: KindException, Message: err.Error(), Err: err}
}

// NormalizeHost returns the bare hostname for a URL or host string:
// lowercase, leading "www." stripped. Error matching and logging rely on
// this being stable regardless of how the user typed the URL.
func NormalizeHost(raw string) string {
	host := raw
	if strings.Contains(raw, "/") || strings.Contains(raw, ":") {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
