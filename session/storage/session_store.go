package storage

import (
	"errors"

	"github.com/freekieb7/nano/session"
)

var ErrSessionNotFound = errors.New("session store: session not found")

// SessionStore persists session attributes between requests. It is used
// from every connection concurrently.
type SessionStore interface {
	Close() error
	Has(id string) bool
	Get(id string) (map[string]any, error)
	Save(s *session.Session) error
	Delete(id string) error
}
