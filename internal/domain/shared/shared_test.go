package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	entity := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, entity.ID)
	assert.False(t, entity.CreatedAt.IsZero())
	assert.Equal(t, entity.CreatedAt, entity.UpdatedAt)

	other := NewBaseEntity()
	assert.NotEqual(t, entity.ID, other.ID)
}

func TestDomainError(t *testing.T) {
	err := NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")

	assert.Equal(t, "Vendor name cannot be empty", err.Error())
	assert.Equal(t, "INVALID_VENDOR_NAME", err.Code)
}

func TestErrNotFoundSentinel(t *testing.T) {
	wrapped := fmt.Errorf("failed to look up vendor: %w", ErrNotFound)

	assert.True(t, errors.Is(wrapped, ErrNotFound))

	var domainErr *DomainError
	assert.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
