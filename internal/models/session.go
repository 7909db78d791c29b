package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session records an issued session token for audit and revocation
// bookkeeping. API tokens are not recorded here; they live on the account
// and are replaced wholesale on rotation.
type Session struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AccountID uint64  `gorm:"not null;index"`       // Owning account ID.
	Account   Account `gorm:"foreignKey:AccountID"` // Owning account.

	SessionToken string `gorm:"type:text;not null"` // Issued session token.

	Metadata datatypes.JSON `gorm:"type:jsonb"` // Client metadata (address, user agent).

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
