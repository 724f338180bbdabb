// Package entry provides CRUD operations for persisted session entries.
package entry

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erpdesk/sessiond/internal/db/models"
)

var (
	// ErrEntryNotFound is returned when an entry is missing or expired.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEntryKeyEmpty is returned when attempting to use an empty key.
	ErrEntryKeyEmpty = errors.New("entry key cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a live entry by key. Expired entries are removed and reported as not found.
func Get(db *gorm.DB, key string) (*models.Entry, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrEntryKeyEmpty
	}

	var entry models.Entry
	result := db.Where(byKey(key)).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, result.Error
	}

	if entry.Expired(time.Now()) {
		db.Delete(&entry)
		return nil, ErrEntryNotFound
	}

	return &entry, nil
}

// Set creates or updates an entry (upsert). A ttl of zero stores the entry without expiry.
func Set(db *gorm.DB, key string, value []byte, ttl time.Duration) (*models.Entry, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrEntryKeyEmpty
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	var entry models.Entry
	result := db.Where(byKey(key)).First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		entry = models.Entry{Key: key, Value: value, ExpiresAt: expiresAt}
		if result = db.Create(&entry); result.Error != nil {
			return nil, result.Error
		}

		return &entry, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	entry.Value = value
	entry.ExpiresAt = expiresAt
	if result = db.Save(&entry); result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

// Delete removes an entry by key. Deleting a missing key is not an error.
func Delete(db *gorm.DB, key string) error {
	if db == nil {
		return ErrDBNil
	}
	if key == "" {
		return ErrEntryKeyEmpty
	}

	return db.Where(byKey(key)).Delete(&models.Entry{}).Error
}

// DeleteExpired removes every entry past its expiry and returns how many were removed.
func DeleteExpired(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now()).Delete(&models.Entry{})

	return result.RowsAffected, result.Error
}

// byKey matches the key column. key is reserved in MySQL, so the column goes
// through the dialector's quoting.
func byKey(key string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

// Reset removes every entry.
func Reset(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Entry{}).Error
}
