package models

import (
	"time"
)

// ReadStatus is the per-(message, user) read ledger entry. Absence of a row
// means unread. ReadAt is set exactly when a message transitions to read and
// cleared when it is explicitly reset to unread.
type ReadStatus struct {
	MessageID uint       `gorm:"primaryKey" json:"message_id"`
	UserID    uint       `gorm:"primaryKey" json:"user_id"`
	Read      bool       `gorm:"not null;default:false" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
