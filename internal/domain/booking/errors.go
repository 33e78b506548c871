package booking

import "errors"

var (
	ErrProviderRequired = errors.New("provider id is required")
	ErrSelfBooking      = errors.New("cannot book yourself")
	ErrProviderNotFound = errors.New("provider not found")
	ErrServiceMismatch  = errors.New("service does not belong to provider")
	ErrPaymentInUse     = errors.New("payment intent already attached to a booking")
	// ErrNotFound covers a missing booking, one that is no longer pending and
	// one owned by another provider.
	ErrNotFound = errors.New("not_found")
	// ErrPayment is returned after the status changed but the payment call failed.
	ErrPayment = errors.New("payment operation failed")
)
