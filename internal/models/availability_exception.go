package models

import "time"

// AvailabilityException overrides the weekly rule for a single date.
// At most one row per (provider, date).
type AvailabilityException struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"uniqueIndex:idx_provider_date" json:"provider_id"`

	// Date is "2006-01-02" in the provider's timezone.
	Date string `gorm:"size:10;uniqueIndex:idx_provider_date" json:"date"`

	Closed bool `json:"closed"`

	// Special hours for the date when not closed.
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	Reason string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
