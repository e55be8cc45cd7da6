package bilevel

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// CodecError is the interface implemented by every error returned by this
// module's codecs.
type CodecError interface {
	error
	WithMessage(message string) CodecError
	WithMessagef(format string, args ...any) CodecError
	Wrap(err error) CodecError
}

type baseCodecError string

const rootError = baseCodecError("")

var ErrBadLineHeader = rootError.WithMessage("Malformed line header")
var ErrBufferTooSmall = rootError.WithMessage("Destination buffer too small")
var ErrHeaderWordCount = rootError.WithMessage("Line header word count mismatch")
var ErrIndexSize = rootError.WithMessage("Line index size mismatch")
var ErrInvalidGeometry = rootError.WithMessage("Invalid subset geometry")
var ErrModeConflict = rootError.WithMessage("Operation conflicts with stream in progress")
var ErrOffsetOverflow = rootError.WithMessage("Stream offset out of range")
var ErrOneLineMode = rootError.WithMessage("Operation not supported in one-line mode")
var ErrRowNotIndexed = rootError.WithMessage("Row has no recorded offset")
var ErrRowOutOfRange = rootError.WithMessage("Row out of range")
var ErrRunParity = rootError.WithMessage("Row has an even number of runs")
var ErrRunOverflow = rootError.WithMessage("Runs exceed row width")
var ErrRunUnderflow = rootError.WithMessage("Runs fall short of row width")
var ErrShortSource = rootError.WithMessage("Source ends mid-row")
var ErrWidthMismatch = rootError.WithMessage("Row width mismatch")

func (e baseCodecError) Error() string {
	return string(e)
}

func (e baseCodecError) RootCause() CodecError {
	return e
}

func (e baseCodecError) WithMessage(message string) CodecError {
	return customCodecError{
		message:       message,
		originalError: e,
	}
}

func (e baseCodecError) WithMessagef(format string, args ...any) CodecError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

func (e baseCodecError) Wrap(err error) CodecError {
	return customCodecError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customCodecError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customCodecError) Error() string {
	return e.message
}

// WithMessage returns a new error whose message is this error's message with
// `message` appended. The new error still matches this one under [errors.Is].
func (e customCodecError) WithMessage(message string) CodecError {
	return customCodecError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

// WithMessagef is a convenience wrapper around [customCodecError.WithMessage]
// taking a format string.
func (e customCodecError) WithMessagef(format string, args ...any) CodecError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

func (e customCodecError) Wrap(err error) CodecError {
	return customCodecError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customCodecError) Unwrap() error {
	return e.originalError
}
