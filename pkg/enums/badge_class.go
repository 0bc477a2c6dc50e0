package enums

import "fmt"

// BadgeClass is the visual badge variant attached to a workflow status in
// the portal UI. Stored alongside each status definition so the badge map
// follows the configured vocabulary instead of a compiled-in list.
type BadgeClass string

const (
	BadgeClassSecondary BadgeClass = "secondary"
	BadgeClassInfo      BadgeClass = "info"
	BadgeClassPrimary   BadgeClass = "primary"
	BadgeClassWarning   BadgeClass = "warning"
	BadgeClassSuccess   BadgeClass = "success"
	BadgeClassDanger    BadgeClass = "danger"
)

var validBadgeClasses = []BadgeClass{
	BadgeClassSecondary,
	BadgeClassInfo,
	BadgeClassPrimary,
	BadgeClassWarning,
	BadgeClassSuccess,
	BadgeClassDanger,
}

// String implements fmt.Stringer.
func (b BadgeClass) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BadgeClass.
func (b BadgeClass) IsValid() bool {
	for _, candidate := range validBadgeClasses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBadgeClass converts raw input into a BadgeClass.
func ParseBadgeClass(value string) (BadgeClass, error) {
	for _, candidate := range validBadgeClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid badge class %q", value)
}
