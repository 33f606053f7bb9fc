package interpreter

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/timber/pkg/domain/entities"
)

var (
	// ErrAIUnavailable is returned before any request when no generator is configured
	ErrAIUnavailable = errors.New("AI service not configured")
	// ErrRequestInFlight is returned when the same feature is already waiting on the AI
	ErrRequestInFlight = errors.New("request already in progress")
)

// TransportError wraps a failed generator call
type TransportError struct {
	Feature string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: AI request failed: %v", e.Feature, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran out of time
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ParseKind distinguishes the ways a response can fail to parse
type ParseKind int

const (
	// KindDecode means the text is not valid JSON
	KindDecode ParseKind = iota
	// KindShape means the JSON has the wrong top-level type
	KindShape
	// KindSchema means the JSON could not be mapped onto the expected value
	KindSchema
)

// String method for ParseKind enum
func (k ParseKind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindShape:
		return "shape"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// ParseError reports a response that could not be turned into a typed value.
// RawPrefix holds the start of the response for diagnostics.
type ParseError struct {
	Feature   string
	Kind      ParseKind
	RawPrefix string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Feature, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when a non-empty batch had no valid items
type ValidationError struct {
	Feature string
	Dropped int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: all %d items were invalid", e.Feature, e.Dropped)
}

// FailureKind is the coarse category of an error, used to pick a message
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailurePrecondition
	FailureTransport
	FailureDecode
	FailureShape
	FailureInvalid
	FailureDomain
	FailureUnknown
)

// String method for FailureKind enum
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailurePrecondition:
		return "precondition"
	case FailureTransport:
		return "transport"
	case FailureDecode:
		return "decode"
	case FailureShape:
		return "shape"
	case FailureInvalid:
		return "invalid"
	case FailureDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Classify maps err onto the failure taxonomy
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var transportErr *TransportError
	var parseErr *ParseError
	var validationErr *ValidationError

	switch {
	case errors.Is(err, ErrAIUnavailable),
		errors.Is(err, ErrRequestInFlight),
		errors.Is(err, entities.ErrNothingToMatch),
		errors.Is(err, entities.ErrInvalidInput):
		return FailurePrecondition
	case errors.As(err, &transportErr):
		return FailureTransport
	case errors.As(err, &parseErr):
		switch parseErr.Kind {
		case KindDecode:
			return FailureDecode
		case KindShape:
			return FailureShape
		default:
			return FailureInvalid
		}
	case errors.As(err, &validationErr):
		return FailureInvalid
	case errors.Is(err, entities.ErrNotFound),
		errors.Is(err, entities.ErrAlreadyMatched),
		errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrInsufficientData):
		return FailureDomain
	default:
		return FailureUnknown
	}
}

// UserMessage renders err as a plain message for direct display
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var transportErr *TransportError
	var parseErr *ParseError
	var validationErr *ValidationError

	switch {
	case errors.Is(err, ErrAIUnavailable):
		return "The AI service is not configured. Set GEMINI_API_KEY and try again."
	case errors.Is(err, ErrRequestInFlight):
		return "A request for this feature is already in progress. Please wait for it to finish."
	case errors.Is(err, entities.ErrNothingToMatch):
		return "There are no open demands or no available stock to match."
	case errors.Is(err, entities.ErrInvalidInput):
		return fmt.Sprintf("Invalid input: %v", err)
	case errors.As(err, &transportErr):
		if transportErr.Timeout() {
			return "The AI service did not respond in time. Please try again."
		}
		return "The AI service could not be reached. Please try again later."
	case errors.As(err, &parseErr):
		switch parseErr.Kind {
		case KindDecode:
			return fmt.Sprintf("The AI response could not be read. It began with: %q", parseErr.RawPrefix)
		case KindShape:
			return fmt.Sprintf("The AI response had an unexpected format. It began with: %q", parseErr.RawPrefix)
		default:
			return fmt.Sprintf("The AI response was missing required information. It began with: %q", parseErr.RawPrefix)
		}
	case errors.As(err, &validationErr):
		return fmt.Sprintf("None of the %d items returned by the AI were usable. Please try again.", validationErr.Dropped)
	case errors.Is(err, entities.ErrNotFound):
		return "The selected record no longer exists."
	case errors.Is(err, entities.ErrAlreadyMatched):
		return "This demand or stock has already been matched."
	case errors.Is(err, entities.ErrInvalidTransition):
		return "That status change is not allowed."
	case errors.Is(err, entities.ErrInsufficientData):
		return "At least two confirmed matches are needed to build a loading plan."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
