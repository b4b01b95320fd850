package scanexec

import (
	"errors"
	"fmt"
)

// Sentinel errors for common CLI failures.
var (
	// ErrInvalidArgument indicates a rejected flag, config value or address.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInterrupted indicates the sweep was cancelled before it completed.
	ErrInterrupted = errors.New("scan interrupted")
)

// Error codes for scan failures used by CLI suggestion system.
const (
	errorCodeInvalidArgument = "INVALID_ARGUMENT"
	errorCodeInterrupted     = "SCAN_INTERRUPTED"
	errorCodeScanFailure     = "SCAN_FAILURE"
)

// Exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// codedError wraps an error with an explicit error code.
type codedError struct {
	error
	code string
}

func (e *codedError) Error() string {
	return e.error.Error()
}

func (e *codedError) Unwrap() error {
	return e.error
}

func (e *codedError) Code() string {
	return e.code
}

// WithErrorCode wraps err with a specific CLI error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &codedError{error: err, code: code}
}

// ErrorCode resolves a scan error into a CLI error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, ErrInvalidArgument):
		return errorCodeInvalidArgument
	case errors.Is(err, ErrInterrupted):
		return errorCodeInterrupted
	}

	return errorCodeScanFailure
}

// IsInvalidArgument reports whether err was caused by bad user input.
func IsInvalidArgument(err error) bool {
	return ErrorCode(err) == errorCodeInvalidArgument
}

// ExitCode maps scan errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch ErrorCode(err) {
	case errorCodeInvalidArgument:
		return ExitUsage
	case errorCodeInterrupted:
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// Suggestions provides CLI hints for scan errors.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}

	switch ErrorCode(err) {
	case errorCodeInvalidArgument:
		return []string{
			"Scan a host:                ipsniffer -a 192.168.1.10",
			"Scan a port range:          ipsniffer -a 10.0.0.1 -s 20 -e 1025",
		}
	case errorCodeInterrupted:
		return []string{
			"Narrow the range:           ipsniffer -s 1 -e 1025",
			"Bound each attempt:         ipsniffer --timeout 500ms",
		}
	default:
		return []string{
			"Retry with verbose logs:    ipsniffer -vv",
			"Limit parallel connects:    ipsniffer --concurrency 512",
		}
	}
}

// NewInvalidArgumentError annotates a rejected input with the argument code.
func NewInvalidArgumentError(reason error) error {
	if reason == nil {
		return WithErrorCode(ErrInvalidArgument, errorCodeInvalidArgument)
	}
	return WithErrorCode(fmt.Errorf("%w: %w", ErrInvalidArgument, reason), errorCodeInvalidArgument)
}

// NewInvalidAddressError reports an address that does not parse as an IP.
func NewInvalidAddressError(input string, reason error) error {
	return NewInvalidArgumentError(fmt.Errorf("invalid address %q: %w", input, reason))
}
