package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/weilandt/circ-api/internal/service/auth"
	"github.com/weilandt/circ-api/internal/store"
)

func newTestMembership(t *testing.T) (MembershipService, *fakeStores, *fakeNotifier) {
	t.Helper()
	stores := newFakeStores()
	notifier := &fakeNotifier{}
	svc := NewMembershipService(
		fakeUserStore{stores},
		fakeAdminStore{stores},
		auth.NewBcryptVerifier(),
		notifier,
		bcrypt.MinCost,
		testLogger(),
	)
	return svc, stores, notifier
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password and sends welcome notice", func(t *testing.T) {
		svc, stores, notifier := newTestMembership(t)

		user, err := svc.Register(ctx, "yaman", "password123", "yaman@example.com")
		require.NoError(t, err)
		require.Len(t, stores.users, 1)

		assert.Empty(t, user.Password)
		assert.NotEqual(t, "password123", user.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))

		require.Len(t, notifier.sends, 1)
		assert.Equal(t, "yaman@example.com", notifier.sends[0].recipient)
	})

	t.Run("rejects a taken name", func(t *testing.T) {
		svc, _, _ := newTestMembership(t)

		_, err := svc.Register(ctx, "yaman", "password123", "yaman@example.com")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "YAMAN", "otherpassword", "other@example.com")
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc, _, _ := newTestMembership(t)

		_, err := svc.Register(ctx, "", "password123", "yaman@example.com")
		assert.Error(t, err)

		_, err = svc.Register(ctx, "yaman", "password123", "not-an-email")
		assert.Error(t, err)
	})

	t.Run("registration survives a failed welcome notice", func(t *testing.T) {
		svc, stores, notifier := newTestMembership(t)
		notifier.err = assert.AnError

		_, err := svc.Register(ctx, "yaman", "password123", "yaman@example.com")
		require.NoError(t, err)
		assert.Len(t, stores.users, 1)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestMembership(t)

	_, err := svc.Register(ctx, "yaman", "password123", "yaman@example.com")
	require.NoError(t, err)

	t.Run("accepts correct credentials", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "yaman", "password123")
		require.NoError(t, err)
		assert.Equal(t, "yaman", user.Name)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "yaman", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects an unknown name with the same error", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	svc, stores, _ := newTestMembership(t)

	_, err := svc.Register(ctx, "yaman", "password123", "yaman@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Unregister(ctx, "yaman"))
	assert.Empty(t, stores.users)

	err = svc.Unregister(ctx, "yaman")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestAdminAccounts(t *testing.T) {
	ctx := context.Background()
	svc, stores, _ := newTestMembership(t)

	admin, err := svc.RegisterAdmin(ctx, "librarian", "adminpass")
	require.NoError(t, err)
	assert.Len(t, stores.admins, 1)
	assert.NotEqual(t, "adminpass", admin.HashedPassword)

	t.Run("authenticates with correct credentials", func(t *testing.T) {
		got, err := svc.AuthenticateAdmin(ctx, "librarian", "adminpass")
		require.NoError(t, err)
		assert.Equal(t, "librarian", got.Name)
	})

	t.Run("rejects wrong credentials", func(t *testing.T) {
		_, err := svc.AuthenticateAdmin(ctx, "librarian", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.AuthenticateAdmin(ctx, "nobody", "adminpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
