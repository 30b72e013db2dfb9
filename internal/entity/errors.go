package entity

import "errors"

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrTrialNotFound      = errors.New("trial not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentNotPending  = errors.New("payment already reviewed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound) ||
		errors.Is(err, ErrTrialNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}
