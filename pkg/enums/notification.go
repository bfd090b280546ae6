package enums

import "fmt"

// NotificationKind enumerates the messages the notification sink can render.
type NotificationKind string

const (
	NotificationGroupCreated       NotificationKind = "group_created"
	NotificationGroupStatusChanged NotificationKind = "group_status_changed"
	NotificationReservationEdited  NotificationKind = "reservation_edited"
	NotificationVehicleAdded       NotificationKind = "vehicle_added"
	NotificationVehicleRemoved     NotificationKind = "vehicle_removed"
)

var validNotificationKinds = []NotificationKind{
	NotificationGroupCreated,
	NotificationGroupStatusChanged,
	NotificationReservationEdited,
	NotificationVehicleAdded,
	NotificationVehicleRemoved,
}

// String implements fmt.Stringer.
func (k NotificationKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known NotificationKind.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts a raw string into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
