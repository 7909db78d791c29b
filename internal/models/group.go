package models

import "time"

// Group assigns permissions to its member accounts.
//
// Priority totally orders groups for seniority comparisons; it is not
// required to be unique. The grant and revoke masks are combined across an
// account's groups by the permissions package.
type Group struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text;not null;uniqueIndex"` // Display name.
	Priority int    `gorm:"not null;default:0"`             // Seniority, higher outranks lower.

	PermissionsGrant  uint64 `gorm:"not null;default:0"` // Capability bits granted.
	PermissionsRevoke uint64 `gorm:"not null;default:0"` // Capability bits revoked.

	Accounts []Account `gorm:"many2many:account_groups"` // Member accounts.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
