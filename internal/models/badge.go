package models

import "time"

// Badge is a decorative award shown on an account's profile.
type Badge struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name  string `gorm:"type:text;not null;uniqueIndex"` // Display name.
	Icon  string `gorm:"type:text"`                      // Icon URL.
	Color string `gorm:"type:text"`                      // Display color.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
