package device

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStorage holds one id in memory and counts writes.
type countingStorage struct {
	id    string
	saves int
}

func (c *countingStorage) Load() (string, bool) { return c.id, c.id != "" }

func (c *countingStorage) Save(id string) {
	c.saves++
	c.id = id
}

func TestAcquire_GeneratesAndPersists(t *testing.T) {
	s := &countingStorage{}

	id := Acquire(s)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.saves)

	stored, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, id, stored)
}

func TestAcquire_ReusesCachedID(t *testing.T) {
	s := &countingStorage{}
	first := Acquire(s)
	second := Acquire(s)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.saves)
}

func TestAcquire_ReplacesInvalidID(t *testing.T) {
	s := &countingStorage{}
	s.id = "not-a-uuid"

	id := Acquire(s)
	assert.NotEqual(t, "not-a-uuid", id)
	assert.True(t, Valid(id))
	assert.Equal(t, 1, s.saves)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("3f1c9b7e-2a4d-4e8f-9c1b-0d2e3f4a5b6c"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("device-1"))
}
