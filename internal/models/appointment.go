package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProviderID uint     `gorm:"index" json:"provider_id"`
	Provider   Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ClientID       *uint `json:"client_id"`
	GuestBookingID *uint `json:"guest_booking_id"`

	ServiceID *uint    `json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service,omitempty"`

	// StartTime is a UTC instant; DurationMin is the core service length.
	StartTime   time.Time `gorm:"index" json:"start_time"`
	DurationMin int       `json:"duration_min"`

	BufferBeforeMin int `json:"buffer_before_min"`
	BufferAfterMin  int `json:"buffer_after_min"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	// Version guards every mutation; stale writers are rejected.
	Version int64 `gorm:"default:1" json:"version"`

	Notes        string `gorm:"size:255" json:"notes"`
	CancelReason string `gorm:"size:255" json:"cancel_reason"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	NoShowAt    *time.Time `json:"no_show_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EndTime is the end of the core service interval, buffers excluded.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMin) * time.Minute)
}
