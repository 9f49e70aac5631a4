// Package session holds per-client attributes keyed by a session id.
//
// Inspired by https://github.com/symfony/symfony/blob/7.2/src/Symfony/Component/HttpFoundation/Session/SessionInterface.php
package session

import "context"

// Session is the attribute bag of one client during one request. It is
// not safe for concurrent use; stores hand out copies.
type Session struct {
	id         string
	attributes map[string]any
	modified   bool
}

func New(id string, attributes map[string]any) *Session {
	if attributes == nil {
		attributes = make(map[string]any)
	}
	return &Session{
		id:         id,
		attributes: attributes,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Has(name string) bool {
	_, found := s.attributes[name]
	return found
}

func (s *Session) Get(name string, fallback any) any {
	value, found := s.attributes[name]
	if !found {
		return fallback
	}
	return value
}

func (s *Session) Set(name string, value any) {
	s.attributes[name] = value
	s.modified = true
}

func (s *Session) Remove(name string) {
	if _, found := s.attributes[name]; found {
		delete(s.attributes, name)
		s.modified = true
	}
}

// All returns a copy of the attributes.
func (s *Session) All() map[string]any {
	out := make(map[string]any, len(s.attributes))
	for k, v := range s.attributes {
		out[k] = v
	}
	return out
}

func (s *Session) Replace(attributes map[string]any) {
	s.attributes = make(map[string]any, len(attributes))
	for k, v := range attributes {
		s.attributes[k] = v
	}
	s.modified = true
}

func (s *Session) Clear() {
	s.attributes = make(map[string]any)
	s.modified = true
}

// Modified reports whether the attributes changed since New.
func (s *Session) Modified() bool {
	return s.modified
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
