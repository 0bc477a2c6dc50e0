package enums

import "fmt"

// NotificationChannel selects the delivery path for a notification.
type NotificationChannel string

const (
	NotificationChannelInApp NotificationChannel = "in_app"
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
)

var validNotificationChannels = []NotificationChannel{
	NotificationChannelInApp,
	NotificationChannelEmail,
	NotificationChannelSMS,
}

// String implements fmt.Stringer.
func (n NotificationChannel) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationChannel.
func (n NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == n {
			return true
		}
	}
	return false
}

// NotificationType names the business event that produced a notification.
type NotificationType string

const (
	NotificationTypeOrderCreated       NotificationType = "order_created"
	NotificationTypeOrderStatusChanged NotificationType = "order_status_changed"
	NotificationTypeDepositVerified    NotificationType = "deposit_verified"
	NotificationTypeQuoteSubmitted     NotificationType = "quote_submitted"
	NotificationTypeQuoteUpdated       NotificationType = "quote_updated"
	NotificationTypeQuoteConverted     NotificationType = "quote_converted"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderCreated,
	NotificationTypeOrderStatusChanged,
	NotificationTypeDepositVerified,
	NotificationTypeQuoteSubmitted,
	NotificationTypeQuoteUpdated,
	NotificationTypeQuoteConverted,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// DeliveryStatus tracks asynchronous dispatch of a stored notification.
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusSent,
	DeliveryStatusFailed,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseNotificationChannel converts raw input into a NotificationChannel.
func ParseNotificationChannel(value string) (NotificationChannel, error) {
	for _, candidate := range validNotificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification channel %q", value)
}
