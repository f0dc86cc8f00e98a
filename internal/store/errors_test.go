package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrorHierarchy(t *testing.T) {
	notFound := []error{ErrUserNotFound, ErrMediaNotFound, ErrLoanNotFound, ErrAdminNotFound}
	for _, err := range notFound {
		assert.ErrorIs(t, err, ErrNotFound, "%v should be a not-found error", err)
		assert.True(t, IsNotFoundError(err))
		assert.False(t, IsDuplicateError(err))
	}

	duplicates := []error{ErrUsernameExists, ErrMediaExists}
	for _, err := range duplicates {
		assert.ErrorIs(t, err, ErrDuplicate, "%v should be a duplicate error", err)
		assert.True(t, IsDuplicateError(err))
		assert.False(t, IsNotFoundError(err))
	}

	// wrapping keeps the hierarchy visible
	wrapped := fmt.Errorf("loading user: %w", ErrUserNotFound)
	assert.True(t, IsNotFoundError(wrapped))
}

func TestStoreError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewStoreError("user", "save", "write failed", inner)

	assert.Contains(t, err.Error(), "save operation on user failed")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, inner)

	bare := NewStoreError("loan", "create", "rejected", nil)
	assert.Equal(t, "create operation on loan failed: rejected", bare.Error())
}
