package store

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDGenerator issues random (version 4) ids for new menu items.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return id.String(), nil
}
