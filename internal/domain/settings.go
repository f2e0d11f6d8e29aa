package domain

import "time"

// ReminderFrequency controls how often the reminder worker runs.
type ReminderFrequency string

const (
	ReminderDaily   ReminderFrequency = "daily"
	ReminderWeekly  ReminderFrequency = "weekly"
	ReminderMonthly ReminderFrequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f ReminderFrequency) Valid() bool {
	switch f {
	case ReminderDaily, ReminderWeekly, ReminderMonthly:
		return true
	}
	return false
}

// Settings is the singleton notification configuration.
type Settings struct {
	ID                    string            `json:"id"`
	EmailPickupReminders  bool              `json:"email_pickup_reminders"`
	EmailPaymentReminders bool              `json:"email_payment_reminders"`
	SMSPickupReminders    bool              `json:"sms_pickup_reminders"`
	SMSPaymentReminders   bool              `json:"sms_payment_reminders"`
	ReminderFrequency     ReminderFrequency `json:"reminder_frequency"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// SettingsUpdate carries a partial settings mutation; nil fields are left
// unchanged.
type SettingsUpdate struct {
	EmailPickupReminders  *bool              `json:"email_pickup_reminders,omitempty"`
	EmailPaymentReminders *bool              `json:"email_payment_reminders,omitempty"`
	SMSPickupReminders    *bool              `json:"sms_pickup_reminders,omitempty"`
	SMSPaymentReminders   *bool              `json:"sms_payment_reminders,omitempty"`
	ReminderFrequency     *ReminderFrequency `json:"reminder_frequency,omitempty"`
}
