package accreditation

import (
	"errors"
	"fmt"
)

// Expected outcomes of valid business requests. Handlers map these to client
// errors; anything else is a storage or programming failure and propagates.
var (
	ErrRecordNotFound       = errors.New("accreditation record not found")
	ErrRecordExists         = errors.New("accreditation record already exists")
	ErrUnknownReason        = errors.New("unknown reason code")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrStaleWrite           = errors.New("accreditation record changed concurrently")
	ErrInvalidQuery         = errors.New("exactly one of pharmacy id or current status is required")
)

// TransitionError carries enough detail for a caller to self-diagnose a
// rejected transition. errors.Is(err, ErrTransitionNotAllowed) matches it.
type TransitionError struct {
	FromStatus Status
	FromReason *string
	ToStatus   Status
	ToReason   *string
}

func (e *TransitionError) Error() string {
	from := string(e.FromStatus)
	if e.FromReason != nil {
		from = fmt.Sprintf("%s/%s", e.FromStatus, *e.FromReason)
	}
	to := string(e.ToStatus)
	if e.ToReason != nil {
		to = fmt.Sprintf("%s/%s", e.ToStatus, *e.ToReason)
	}
	return fmt.Sprintf("transition from %s to %s is not allowed", from, to)
}

func (e *TransitionError) Unwrap() error { return ErrTransitionNotAllowed }
