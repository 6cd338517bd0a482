package shm

// ErrorCode classifies why the link segment could not be obtained. The
// numeric values are shared with the native Mumble link plugin error codes.
type ErrorCode int32

const (
	Success ErrorCode = iota
	ErrOpenFileMapping
	ErrMapViewOfFile
	ErrShmOpen
	ErrMMap
	ErrNoMem
	ErrUnknown
	ErrAlreadyOpen
)

// Kind groups error codes by what the caller can do about them.
type Kind int

const (
	KindNone Kind = iota
	// KindNoSuchMapping means the named object does not exist, usually
	// because Mumble is not running.
	KindNoSuchMapping
	// KindCannotAttach means the object exists but could not be mapped.
	KindCannotAttach
	// KindUninitialized means no memory was available or opened.
	KindUninitialized
	KindUnknown
)

func (c ErrorCode) Error() string {
	switch c {
	case Success:
		return "no error"
	case ErrOpenFileMapping:
		return "OpenFileMappingW failed to return a handle"
	case ErrMapViewOfFile:
		return "MapViewOfFile failed to return a structure"
	case ErrShmOpen:
		return "shm_open returned a negative integer"
	case ErrMMap:
		return "mmap failed to return a structure"
	case ErrNoMem:
		return "shared memory was not initialized"
	case ErrAlreadyOpen:
		return "link segment already owned by this process"
	default:
		return "unknown error"
	}
}

// Kind reports the failure class of c.
func (c ErrorCode) Kind() Kind {
	switch c {
	case Success:
		return KindNone
	case ErrOpenFileMapping, ErrShmOpen:
		return KindNoSuchMapping
	case ErrMapViewOfFile, ErrMMap, ErrAlreadyOpen:
		return KindCannotAttach
	case ErrNoMem:
		return KindUninitialized
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoSuchMapping:
		return "no-such-mapping"
	case KindCannotAttach:
		return "cannot-attach"
	case KindUninitialized:
		return "uninitialized"
	default:
		return "unknown"
	}
}
