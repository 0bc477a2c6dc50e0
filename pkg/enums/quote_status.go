package enums

import "fmt"

// QuoteStatus tracks the lifecycle of a customer quote request.
// Converted is reachable only through the conversion operation, never
// through a plain status edit.
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusReviewing QuoteStatus = "reviewing"
	QuoteStatusQuoted    QuoteStatus = "quoted"
	QuoteStatusApproved  QuoteStatus = "approved"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusConverted QuoteStatus = "converted"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusReviewing,
	QuoteStatusQuoted,
	QuoteStatusApproved,
	QuoteStatusRejected,
	QuoteStatusConverted,
}

// String implements fmt.Stringer.
func (q QuoteStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteStatus.
func (q QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (q QuoteStatus) IsTerminal() bool {
	return q == QuoteStatusRejected || q == QuoteStatusConverted
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
