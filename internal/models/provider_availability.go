package models

import "time"

// ProviderAvailability is one recurring weekly rule per (provider, weekday).
// Times are wall-clock "15:04" strings in the provider's timezone.
type ProviderAvailability struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"uniqueIndex:idx_provider_weekday" json:"provider_id"`

	Weekday int `gorm:"uniqueIndex:idx_provider_weekday" json:"weekday"`

	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
