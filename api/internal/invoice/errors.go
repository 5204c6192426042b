package invoice

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so front ends can map it to an outcome.
type Kind string

const (
	KindInput     Kind = "input"
	KindAuth      Kind = "auth"
	KindQuota     Kind = "quota"
	KindSafety    Kind = "safety"
	KindTransport Kind = "transport"
	KindUpstream  Kind = "upstream"
	KindFormat    Kind = "format"
)

// Error is returned by every stage of the extraction pipeline.
// Raw carries the model text for format errors.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Raw     string
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InputError(message string, err error) *Error {
	return NewError(KindInput, message, err)
}

// FormatError embeds the parse diagnostic and the offending text in the message.
func FormatError(raw string, err error) *Error {
	return &Error{
		Kind:    KindFormat,
		Message: fmt.Sprintf("Failed to parse Gemini response. Error: %v\nResponse:\n%s", err, raw),
		Err:     err,
		Raw:     raw,
	}
}

// KindOf returns the kind of the first *Error in err's chain, KindUpstream otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// IsInput reports whether err was caused by the caller's input.
func IsInput(err error) bool {
	return err != nil && KindOf(err) == KindInput
}
