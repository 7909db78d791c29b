package models

import "time"

// Record status values.
const (
	RecordStatusSubmitted = "SUBMITTED"
	RecordStatusApproved  = "APPROVED"
	RecordStatusRejected  = "REJECTED"
)

// Record type values. Exactly one VERIFICATION record exists per challenge.
const (
	RecordTypeNormal       = "NORMAL"
	RecordTypeVerification = "VERIFICATION"
)

// Record is a player's completion of a challenge.
type Record struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ChallengeID uint64    `gorm:"not null;index"`         // Completed challenge ID.
	Challenge   Challenge `gorm:"foreignKey:ChallengeID"` // Completed challenge.

	PlayerID uint64 `gorm:"not null;index"`      // Completing player ID.
	Player   Player `gorm:"foreignKey:PlayerID"` // Completing player.

	SubmitterID *uint64  `gorm:"index"`                  // Submitting account ID, if any.
	Submitter   *Account `gorm:"foreignKey:SubmitterID"` // Submitting account.

	Status string `gorm:"type:text;not null;default:SUBMITTED"` // Review status.
	Type   string `gorm:"type:text;not null;default:NORMAL"`    // NORMAL or VERIFICATION.
	Video  string `gorm:"type:text;not null"`                   // Proof video URL.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ValidRecordStatus reports whether status is one of the defined values.
func ValidRecordStatus(status string) bool {
	switch status {
	case RecordStatusSubmitted, RecordStatusApproved, RecordStatusRejected:
		return true
	default:
		return false
	}
}
