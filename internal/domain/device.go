package domain

import "time"

// Device is a registered dashboard device. The opaque device_id acts as a
// long-lived credential after one-time code verification.
type Device struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Verified   bool      `json:"verified"`
	LastLogin  time.Time `json:"last_login"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
