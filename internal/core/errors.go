package core

import (
	"errors"
	"strings"
)

// ErrorKind tags every way a conversion can fail.
type ErrorKind int

const (
	// KindUnknown is returned by KindOf for errors that are not conversion errors
	KindUnknown ErrorKind = iota
	// KindInvalidInput means no track identifier was found in the input
	KindInvalidInput
	// KindMissingCredentials means one or more required credentials are empty
	KindMissingCredentials
	// KindSourceAuth means the Spotify session could not be established
	KindSourceAuth
	// KindTrackNotFound means Spotify has no track for the identifier
	KindTrackNotFound
	// KindDestinationAuth means the Qobuz bootstrap or login failed
	KindDestinationAuth
	// KindDestinationSearch means the Qobuz search call itself failed
	KindDestinationSearch
	// KindNoMatch means the Qobuz search returned zero candidates
	KindNoMatch
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindInvalidInput:       "invalid_input",
	KindMissingCredentials: "missing_credentials",
	KindSourceAuth:         "source_auth",
	KindTrackNotFound:      "track_not_found",
	KindDestinationAuth:    "destination_auth",
	KindDestinationSearch:  "destination_search",
	KindNoMatch:            "no_match",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// ConversionError is the single error type surfaced by the converter.
type ConversionError struct {
	Kind      ErrorKind
	Missing   []string
	RequestID string
	Err       error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return e.Message() + ": " + e.Err.Error()
	}
	return e.Message()
}

// Message describes the failure without the wrapped cause. It is the only text shown to end users.
func (e *ConversionError) Message() string {
	switch e.Kind {
	case KindInvalidInput:
		return "invalid Spotify link"
	case KindMissingCredentials:
		return "missing environment variables: " + strings.Join(e.Missing, ", ")
	case KindSourceAuth:
		return "spotify authentication failed"
	case KindTrackNotFound:
		return "track not found on Spotify"
	case KindDestinationAuth:
		return "qobuz authentication failed"
	case KindDestinationSearch:
		return "qobuz search failed"
	case KindNoMatch:
		return "no track found on Qobuz"
	default:
		return "conversion failed"
	}
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is matches any ConversionError of the same kind, so errors.Is(err, ErrNoMatch) works.
func (e *ConversionError) Is(target error) bool {
	var t *ConversionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinel values for errors.Is comparisons.
var (
	ErrInvalidInput       = &ConversionError{Kind: KindInvalidInput}
	ErrMissingCredentials = &ConversionError{Kind: KindMissingCredentials}
	ErrSourceAuth         = &ConversionError{Kind: KindSourceAuth}
	ErrTrackNotFound      = &ConversionError{Kind: KindTrackNotFound}
	ErrDestinationAuth    = &ConversionError{Kind: KindDestinationAuth}
	ErrDestinationSearch  = &ConversionError{Kind: KindDestinationSearch}
	ErrNoMatch            = &ConversionError{Kind: KindNoMatch}
)

// NewError wraps err with the given kind.
func NewError(kind ErrorKind, err error) *ConversionError {
	return &ConversionError{Kind: kind, Err: err}
}

// KindOf reports the kind of the first ConversionError in err's chain.
func KindOf(err error) ErrorKind {
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return convErr.Kind
	}
	return KindUnknown
}

// ensureKind keeps an existing ConversionError as is and wraps anything else with kind.
func ensureKind(err error, kind ErrorKind) error {
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return err
	}
	return NewError(kind, err)
}

func withRequestID(err error, requestID string) error {
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		convErr.RequestID = requestID
	}
	return err
}
