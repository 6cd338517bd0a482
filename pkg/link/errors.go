package link

import (
	"errors"

	internalshm "github.com/srediag/mumble-link/internal/shm"
)

// ErrorCode is the failure code reported when the segment cannot be opened.
type ErrorCode = internalshm.ErrorCode

// Kind classifies an ErrorCode.
type Kind = internalshm.Kind

const (
	Success            = internalshm.Success
	ErrOpenFileMapping = internalshm.ErrOpenFileMapping
	ErrMapViewOfFile   = internalshm.ErrMapViewOfFile
	ErrShmOpen         = internalshm.ErrShmOpen
	ErrMMap            = internalshm.ErrMMap
	ErrNoMem           = internalshm.ErrNoMem
	ErrUnknown         = internalshm.ErrUnknown
	// ErrAlreadyOpen is returned by Open when another Link in this process
	// owns the same segment.
	ErrAlreadyOpen = internalshm.ErrAlreadyOpen
)

const (
	KindNone          = internalshm.KindNone
	KindNoSuchMapping = internalshm.KindNoSuchMapping
	KindCannotAttach  = internalshm.KindCannotAttach
	KindUninitialized = internalshm.KindUninitialized
	KindUnknown       = internalshm.KindUnknown
)

// ErrManuallyClosed is the error of a SharedLink closed by Deactivate.
var ErrManuallyClosed = errors.New("link: manually closed")

// CodeOf extracts the ErrorCode carried by err. Errors without a code are
// ErrUnknown; nil is Success.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ErrUnknown
}
