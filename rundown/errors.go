package rundown

import "fmt"

// Kind identifies which invariant or guard an operation violated. The set is
// closed: handlers switch on it to pick a status code and message without
// parsing error text.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindCapacityExceeded Kind = "capacity_exceeded"
	KindDuplicateName    Kind = "duplicate_name"
	KindAlreadyLinked    Kind = "already_linked"
	KindProtectedSegment Kind = "protected_segment"
	KindInvalidPosition  Kind = "invalid_position"
	KindEmptyRundown     Kind = "empty_rundown"
	KindPermissionDenied Kind = "permission_denied"
	KindSelfApproval     Kind = "self_approval"
	KindNotFound         Kind = "not_found"
)

// Error is the failure type every operation in this package returns. Two
// errors match under errors.Is when their kinds are equal, so callers can
// compare against the Err* sentinels below.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded}
	ErrDuplicateName    = &Error{Kind: KindDuplicateName}
	ErrAlreadyLinked    = &Error{Kind: KindAlreadyLinked}
	ErrProtectedSegment = &Error{Kind: KindProtectedSegment}
	ErrInvalidPosition  = &Error{Kind: KindInvalidPosition}
	ErrEmptyRundown     = &Error{Kind: KindEmptyRundown}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrSelfApproval     = &Error{Kind: KindSelfApproval}
	ErrNotFound         = &Error{Kind: KindNotFound}
)
