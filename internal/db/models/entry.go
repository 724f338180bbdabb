package models

import "time"

// Entry is one persisted key/value pair of the token store.
// Session tokens, cached role flags and the one-shot return location all live here.
type Entry struct {
	// ID is the unique identifier for the entry.
	ID uint64 `gorm:"primaryKey"`
	// Key is the unique storage key (e.g. "access_token").
	Key string `gorm:"uniqueIndex;size:191;not null"`
	// Value is the raw stored value.
	Value []byte
	// ExpiresAt is the optional expiry; nil means the entry never expires.
	ExpiresAt *time.Time `gorm:"index"`
	// UpdatedAt is the timestamp of the last write (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Entry model.
func (Entry) TableName() string {
	return "session_entries"
}

// Expired reports whether the entry is past its expiry at now.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}
