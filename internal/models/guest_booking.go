package models

import "time"

// GuestBooking is an appointment made without an account. The confirmation
// code is the guest's only handle for self-service lookup. Rows are never
// deleted; conversion to an account is recorded in place.
type GuestBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GuestName  string `gorm:"size:100;not null" json:"guest_name"`
	GuestEmail string `gorm:"size:100" json:"guest_email"`
	GuestPhone string `gorm:"size:20" json:"guest_phone"`

	ConfirmationCode string `gorm:"size:16;uniqueIndex" json:"confirmation_code"`

	AppointmentID uint `json:"appointment_id"`

	ConvertedToUserID        *uint      `json:"converted_to_user_id"`
	ConvertedToAppointmentID *uint      `json:"converted_to_appointment_id"`
	ConvertedAt              *time.Time `json:"converted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *GuestBooking) Converted() bool {
	return g.ConvertedToUserID != nil
}
