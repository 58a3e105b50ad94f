package users

import (
	"strings"
	"time"
)

// Identity records a caller that has authenticated against the API, keyed
// by the token subject.
type Identity struct {
	Subject     string    `gorm:"column:subject;primaryKey;size:190;not null"`
	DisplayName string    `gorm:"column:display_name;size:320"`
	FirstSeenAt time.Time `gorm:"column:first_seen_at;not null"`
	LastSeenAt  time.Time `gorm:"column:last_seen_at;not null;index"`
}

// TableName exposes the table backing caller identities.
func (Identity) TableName() string {
	return "user_identities"
}

func normalize(value string) string {
	return strings.TrimSpace(value)
}
