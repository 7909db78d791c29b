package models

import "time"

// Account represents a registered account stored in the database.
type Account struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username     string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	PasswordHash string `gorm:"type:text;not null"`             // Argon2id password hash.

	APIKey *string `gorm:"type:text"` // Current API token, replaced on rotation.

	Flags uint64 `gorm:"not null;default:0"` // Account state flags.

	PlayerID *uint64 `gorm:"index"`               // Linked player profile ID.
	Player   *Player `gorm:"foreignKey:PlayerID"` // Linked player profile.

	Groups []Group `gorm:"many2many:account_groups"` // Permission groups.
	Badges []Badge `gorm:"many2many:account_badges"` // Earned badges.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
