package enums

import "fmt"

// PaymentIntentStatus tracks the lifecycle of a mock payment intent.
type PaymentIntentStatus string

const (
	PaymentIntentStatusCreated   PaymentIntentStatus = "CREATED"
	PaymentIntentStatusSucceeded PaymentIntentStatus = "SUCCEEDED"
	PaymentIntentStatusFailed    PaymentIntentStatus = "FAILED"
	PaymentIntentStatusCanceled  PaymentIntentStatus = "CANCELED"
	PaymentIntentStatusExpired   PaymentIntentStatus = "EXPIRED"
)

var validPaymentIntentStatuses = []PaymentIntentStatus{
	PaymentIntentStatusCreated,
	PaymentIntentStatusSucceeded,
	PaymentIntentStatusFailed,
	PaymentIntentStatusCanceled,
	PaymentIntentStatusExpired,
}

// String implements fmt.Stringer.
func (s PaymentIntentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PaymentIntentStatus.
func (s PaymentIntentStatus) IsValid() bool {
	for _, candidate := range validPaymentIntentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsLive reports whether the intent can still resolve. A group may hold at
// most one live intent at a time.
func (s PaymentIntentStatus) IsLive() bool {
	return s == PaymentIntentStatusCreated
}

// ParsePaymentIntentStatus converts raw input into a PaymentIntentStatus.
func ParsePaymentIntentStatus(value string) (PaymentIntentStatus, error) {
	for _, candidate := range validPaymentIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment intent status %q", value)
}
