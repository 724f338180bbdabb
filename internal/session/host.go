package session

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigator owns the current location of the hosting view.
type Navigator interface {
	Location() string
	Navigate(path string)
}

// FormRestorer restores saved form values after a redirect to url.
type FormRestorer interface {
	RestoreForm(url string, values map[string]string) error
}

// NotificationKind classifies user facing notifications.
type NotificationKind string

// Notification kinds.
const (
	NotifyAuthFailure NotificationKind = "auth_failure"
	NotifyTimeout     NotificationKind = "timeout"
)

// Notification is a user facing message about the session.
type Notification struct {
	Kind    NotificationKind
	Message string
	Err     error
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// MemoryNavigator is a Navigator for hosts without a real view layer.
type MemoryNavigator struct {
	mu       sync.RWMutex
	location string
	history  []string
}

// NewMemoryNavigator starts at location.
func NewMemoryNavigator(location string) *MemoryNavigator {
	return &MemoryNavigator{location: location}
}

// Location implements Navigator.
func (n *MemoryNavigator) Location() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.location
}

// Navigate implements Navigator.
func (n *MemoryNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.location = path
	n.history = append(n.history, path)
}

// History returns every navigation target in order.
func (n *MemoryNavigator) History() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return append([]string(nil), n.history...)
}

// LogNotifier writes notifications to the global logger.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(n Notification) {
	log.Warn().Err(n.Err).Str("kind", string(n.Kind)).Msg(n.Message)
}
