// Package device resolves the random identifier that scopes journal entries
// to one browsing context. It carries no authentication guarantee.
package device

import "github.com/google/uuid"

// Storage is where a device identifier is cached between requests.
type Storage interface {
	Load() (string, bool)
	Save(id string)
}

// Acquire returns the identifier held by s, generating and persisting a new
// one when s is empty or holds something that is not a UUID.
func Acquire(s Storage) string {
	if id, ok := s.Load(); ok && Valid(id) {
		return id
	}
	id := uuid.NewString()
	s.Save(id)
	return id
}

// Valid reports whether id looks like an identifier produced by Acquire.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
