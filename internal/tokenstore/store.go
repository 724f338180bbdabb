// Package tokenstore persists session tokens and auxiliary session flags.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
)

// Storage keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserRole     = "user_role"
	KeyIsSuperAdmin = "is_super_admin"
	KeyReturnURL    = "return_url"
	KeyFormData     = "form_data"
)

// Credentials is what a successful login persists.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Role         string
	IsSuperAdmin bool
}

// Store is the typed session view over a Backend.
// Writes are last-write-wins; the stash and consume of the return location are serialised.
type Store struct {
	backend Backend
	stashMu sync.Mutex
}

// New returns a Store over backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Get returns the value for key, "" if absent.
func (s *Store) Get(key string) (string, error) {
	val, err := s.backend.Get(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackend, err)
	}

	return string(val), nil
}

// Set writes value under key without expiry.
func (s *Store) Set(key, value string) error {
	if err := s.backend.Set(key, []byte(value), 0); err != nil {
		return fmt.Errorf("%w: %w", ErrBackend, err)
	}

	return nil
}

// Remove deletes every key, continuing past failures and returning the first one.
func (s *Store) Remove(keys ...string) error {
	var first error

	for _, k := range keys {
		if err := s.backend.Delete(k); err != nil && first == nil {
			first = fmt.Errorf("%w: %w", ErrBackend, err)
		}
	}

	return first
}

// AccessToken returns the stored access token, "" if absent.
func (s *Store) AccessToken() (string, error) { return s.Get(KeyAccessToken) }

// RefreshToken returns the stored refresh token, "" if absent.
func (s *Store) RefreshToken() (string, error) { return s.Get(KeyRefreshToken) }

// Role returns the cached coarse role, "" if absent.
func (s *Store) Role() (string, error) { return s.Get(KeyUserRole) }

// IsSuperAdmin returns the cached super-admin flag.
func (s *Store) IsSuperAdmin() (bool, error) {
	raw, err := s.Get(KeyIsSuperAdmin)
	if err != nil || raw == "" {
		return false, err
	}

	v, _ := strconv.ParseBool(raw)

	return v, nil
}

// SetTokens stores a rotated token pair. An empty refresh token keeps the current one.
func (s *Store) SetTokens(access, refresh string) error {
	if err := s.Set(KeyAccessToken, access); err != nil {
		return err
	}

	if refresh == "" {
		return nil
	}

	return s.Set(KeyRefreshToken, refresh)
}

// Persist stores everything a login yields. Empty refresh token and role are skipped.
func (s *Store) Persist(c Credentials) error {
	if err := s.SetTokens(c.AccessToken, c.RefreshToken); err != nil {
		return err
	}

	if c.Role != "" {
		if err := s.Set(KeyUserRole, c.Role); err != nil {
			return err
		}
	}

	return s.Set(KeyIsSuperAdmin, strconv.FormatBool(c.IsSuperAdmin))
}

// Purge removes tokens, role and super-admin flag. The stashed return location survives.
func (s *Store) Purge() error {
	return s.Remove(KeyAccessToken, KeyRefreshToken, KeyUserRole, KeyIsSuperAdmin)
}

// StashReturnURL records where to go after the next login, with optional form values.
func (s *Store) StashReturnURL(url string, form map[string]string) error {
	s.stashMu.Lock()
	defer s.stashMu.Unlock()

	if err := s.Set(KeyReturnURL, url); err != nil {
		return err
	}

	if len(form) == 0 {
		return s.Remove(KeyFormData)
	}

	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode form data: %w", err)
	}

	return s.Set(KeyFormData, string(raw))
}

// ConsumeReturnURL reads and clears the stashed location. It returns "" when nothing is stashed.
// Undecodable form data is dropped.
func (s *Store) ConsumeReturnURL() (string, map[string]string, error) {
	s.stashMu.Lock()
	defer s.stashMu.Unlock()

	url, err := s.Get(KeyReturnURL)
	if err != nil || url == "" {
		return "", nil, err
	}

	rawForm, err := s.Get(KeyFormData)
	if err != nil {
		return "", nil, err
	}

	if err = s.Remove(KeyReturnURL, KeyFormData); err != nil {
		return "", nil, err
	}

	var form map[string]string
	if rawForm != "" {
		if jerr := json.Unmarshal([]byte(rawForm), &form); jerr != nil {
			form = nil
		}
	}

	return url, form, nil
}

// Sweep removes expired entries from backends that need it.
func (s *Store) Sweep() (int64, error) {
	sw, ok := s.backend.(Sweeper)
	if !ok {
		return 0, nil
	}

	n, err := sw.Sweep()
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	return n, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close() //nolint:wrapcheck
}
