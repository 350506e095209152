package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when a series has fewer than two distinct observations.
	ErrInsufficientData = errors.New("not enough historical data")

	// ErrSupplierNotFound is returned when a write references an unknown supplier.
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrInvalidScore is returned for reliability scores outside 0..100.
	ErrInvalidScore = errors.New("reliability score must be between 0 and 100")

	// ErrInvalidQuantity is returned for ledger events with a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrDuplicateEvent is returned when a ledger event ID is already recorded.
	ErrDuplicateEvent = errors.New("ledger event already recorded")
)

// UpstreamError reports that the store or the forecasting model could not
// serve a request (unreachable, failed, timed out).
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream unavailable: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an UpstreamError unless it is nil or already one.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

// IsUpstream reports whether err is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
