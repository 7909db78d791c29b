package models

import "time"

// Player is a person appearing on the list as a verifier, creator,
// publisher, or record holder. Players are created on demand by name and
// need not be linked to an account.
type Player struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name string `gorm:"type:text;not null;uniqueIndex"` // Unique player name.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
