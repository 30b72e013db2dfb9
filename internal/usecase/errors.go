package usecase

import "errors"

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps an infrastructure failure the user cannot fix.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

var (
	ErrPermissionDenied   = &DomainError{Code: "PERMISSION_DENIED", Message: "access denied"}
	ErrTrialAlreadyBooked = &DomainError{Code: "TRIAL_ALREADY_BOOKED", Message: "an upcoming trial already exists"}
	ErrInvalidSegment     = &DomainError{Code: "INVALID_SEGMENT", Message: "unknown broadcast segment"}
	ErrEmptyMessage       = &DomainError{Code: "EMPTY_MESSAGE", Message: "message text is empty"}
)
