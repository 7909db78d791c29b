package models

import "time"

// Challenge is an entry on the ordered list.
//
// Position is 1-based and kept contiguous across the whole table by the
// positions engine; no other code may renumber it.
type Challenge struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text;not null"`  // Display name.
	Position int    `gorm:"not null;index"`      // 1-based list position.
	Video    string `gorm:"type:text;not null"`  // Verification video URL.
	FPS      string `gorm:"type:text;not null"`  // Accepted frame rates.
	Points   int    `gorm:"not null;default:0"`  // Points awarded for completion.

	VerifierID uint64 `gorm:"not null;index"`        // Verifying player ID.
	Verifier   Player `gorm:"foreignKey:VerifierID"` // Verifying player.

	PublisherID uint64 `gorm:"not null;index"`         // Publishing player ID.
	Publisher   Player `gorm:"foreignKey:PublisherID"` // Publishing player.

	Creators []Player `gorm:"many2many:challenge_creators"` // Creating players.
	Records  []Record `gorm:"foreignKey:ChallengeID"`       // Completion records.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
