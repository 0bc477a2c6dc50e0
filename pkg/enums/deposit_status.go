package enums

import "fmt"

// DepositStatus tracks a deposit from staff entry to bank verification.
// Only verified deposits count toward an order's deposit total.
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusVerified DepositStatus = "verified"
	DepositStatusRejected DepositStatus = "rejected"
)

var validDepositStatuses = []DepositStatus{
	DepositStatusPending,
	DepositStatusVerified,
	DepositStatusRejected,
}

// String implements fmt.Stringer.
func (d DepositStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DepositStatus.
func (d DepositStatus) IsValid() bool {
	for _, candidate := range validDepositStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (d DepositStatus) IsTerminal() bool {
	return d == DepositStatusVerified || d == DepositStatusRejected
}

// ParseDepositStatus converts raw input into a DepositStatus.
func ParseDepositStatus(value string) (DepositStatus, error) {
	for _, candidate := range validDepositStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deposit status %q", value)
}
