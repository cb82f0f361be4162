package models

import "time"

type Profile struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type NotificationPreferences struct {
	EmailNewLogins       bool `json:"email_new_logins"`
	SMSLargeTransactions bool `json:"sms_large_transactions"`
	PushAccountUpdates   bool `json:"push_account_updates"`
	PromotionalEmails    bool `json:"promotional_emails"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailNewLogins:     true,
		PushAccountUpdates: true,
	}
}

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
)

// Notification is a toast raised by a dashboard action.
type Notification struct {
	ID          string            `json:"id"`
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
}
