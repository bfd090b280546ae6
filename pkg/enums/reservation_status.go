package enums

import "fmt"

// ReservationStatus tracks the lifecycle of a reservation group.
type ReservationStatus string

const (
	ReservationStatusPending         ReservationStatus = "PENDING"
	ReservationStatusAwaitingPayment ReservationStatus = "AWAITING_PAYMENT"
	ReservationStatusReserved        ReservationStatus = "RESERVED"
	ReservationStatusRejected        ReservationStatus = "REJECTED"
	ReservationStatusCanceled        ReservationStatus = "CANCELED"
	ReservationStatusCompleted       ReservationStatus = "COMPLETED"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusAwaitingPayment,
	ReservationStatusReserved,
	ReservationStatusRejected,
	ReservationStatusCanceled,
	ReservationStatusCompleted,
}

// BlockingReservationStatuses lists the statuses that count as occupying a
// vehicle for conflict purposes.
func BlockingReservationStatuses() []ReservationStatus {
	return []ReservationStatus{
		ReservationStatusPending,
		ReservationStatusAwaitingPayment,
		ReservationStatusReserved,
	}
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsBlocking reports whether the status occupies a vehicle.
func (s ReservationStatus) IsBlocking() bool {
	for _, candidate := range BlockingReservationStatuses() {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusReserved, ReservationStatusRejected,
		ReservationStatusCanceled, ReservationStatusCompleted:
		return true
	}
	return false
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
