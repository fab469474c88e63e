package booking

import "github.com/residenza/service-facility/internal/platform/auth"

// CanApprove reports whether actor may approve or reject bookings.
func CanApprove(actor auth.Identity) bool {
	return actor.IsAdmin()
}

// CanCancel reports whether actor may cancel b.
func CanCancel(actor auth.Identity, b *Booking) bool {
	return actor.IsAdmin() || actor.UserID == b.OwnerID()
}

// CanView reports whether actor may see b.
func CanView(actor auth.Identity, b *Booking) bool {
	return actor.IsAdmin() || actor.UserID == b.OwnerID() || b.Status() == StatusApproved
}
