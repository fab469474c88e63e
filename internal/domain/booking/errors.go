package booking

import "github.com/residenza/service-facility/internal/platform/apperror"

var (
	ErrNotFound         = apperror.New(apperror.KindNotFound, "booking_not_found", "booking not found")
	ErrInvalidTimeRange = apperror.New(apperror.KindValidation, "invalid_time_range", "invalid booking time range")
	ErrDateInPast       = apperror.New(apperror.KindValidation, "booking_date_in_past", "booking date cannot be in the past")
	ErrConflict         = apperror.New(apperror.KindConflict, "booking_conflict", "time slot overlaps an existing booking")
	ErrForbidden        = apperror.New(apperror.KindForbidden, "booking_forbidden", "not allowed to modify this booking")
	ErrAlreadyCancelled = apperror.New(apperror.KindValidation, "booking_already_cancelled", "booking is already cancelled")
	ErrPastBooking      = apperror.New(apperror.KindValidation, "booking_in_past", "cannot cancel a booking that has already started")
	ErrNotCancellable   = apperror.New(apperror.KindValidation, "booking_not_cancellable", "booking cannot be cancelled in its current status")
	ErrInvalidDecision  = apperror.New(apperror.KindValidation, "invalid_decision", "decision must be approved or rejected")
	ErrNotPending       = apperror.New(apperror.KindValidation, "booking_not_pending", "booking is not pending approval")
	ErrStaleBooking     = apperror.New(apperror.KindConflict, "booking_modified", "booking was modified by another request")
)
