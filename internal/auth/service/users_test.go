package service

import (
	"context"
	"testing"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/pkg/cryptox"

	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st, Hasher: cryptox.NewHasher(cryptox.BaselineIterations)}

	alice := mustUser(t, st, "alice", "hash")

	status := func() domain.UserStatus {
		u, err := svc.Get(ctx, alice.ID)
		require.NoError(t, err)
		return u.Status
	}

	t.Run("deactivate then activate", func(t *testing.T) {
		require.NoError(t, svc.Deactivate(ctx, alice.ID, "on leave"))
		require.Equal(t, domain.UserInactive, status())

		// Activating an already inactive account works; activating an
		// active one does not.
		require.NoError(t, svc.Activate(ctx, alice.ID, "back"))
		require.Equal(t, domain.UserActive, status())
		require.ErrorIs(t, svc.Activate(ctx, alice.ID, "again"), ErrInvalidTransition)
	})

	t.Run("lock and unlock", func(t *testing.T) {
		require.NoError(t, svc.Lock(ctx, alice.ID, "too many attempts"))
		require.Equal(t, domain.UserLocked, status())

		require.ErrorIs(t, svc.Deactivate(ctx, alice.ID, "nope"), ErrInvalidTransition)

		require.NoError(t, svc.Unlock(ctx, alice.ID, "verified"))
		require.Equal(t, domain.UserActive, status())
	})

	t.Run("soft delete and restore", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, alice.ID, "gdpr request"))
		require.Equal(t, domain.UserDeleted, status())

		// Deleted is terminal except for restore.
		require.ErrorIs(t, svc.Activate(ctx, alice.ID, "nope"), ErrInvalidTransition)
		require.ErrorIs(t, svc.Lock(ctx, alice.ID, "nope"), ErrInvalidTransition)
		require.ErrorIs(t, svc.Delete(ctx, alice.ID, "twice"), ErrInvalidTransition)

		require.NoError(t, svc.Restore(ctx, alice.ID, "mistake"))
		require.Equal(t, domain.UserInactive, status())
	})

	t.Run("reason is recorded", func(t *testing.T) {
		require.NoError(t, svc.Activate(ctx, alice.ID, "restored and reviewed"))
		u, err := svc.Get(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "restored and reviewed", u.StatusReason)
	})

	t.Run("unknown user", func(t *testing.T) {
		require.ErrorIs(t, svc.Activate(ctx, "missing", ""), ErrUserNotFound)
		_, err := svc.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st, Hasher: cryptox.NewHasher(cryptox.BaselineIterations)}

	hash, err := svc.Hasher.Hash("old password")
	require.NoError(t, err)
	bob := mustUser(t, st, "bob", hash)

	t.Run("verifies the old password first", func(t *testing.T) {
		err := svc.ChangePassword(ctx, bob.ID, "wrong", "new password")
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("installs the new hash", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, bob.ID, "old password", "new password"))

		u, err := svc.Get(ctx, bob.ID)
		require.NoError(t, err)
		require.True(t, svc.Hasher.Verify("new password", u.PasswordHash))
		require.False(t, svc.Hasher.Verify("old password", u.PasswordHash))
	})

	t.Run("empty new password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, bob.ID, "new password", "")
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})
}

func TestRoleReferences(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st, Hasher: cryptox.NewHasher(cryptox.BaselineIterations)}

	role := mustRole(t, st, "viewer",
		domain.Privilege{Aggregate: "User", AccessRight: domain.AccessRead})
	carol := mustUser(t, st, "carol", "hash")

	t.Run("assign is idempotent", func(t *testing.T) {
		require.NoError(t, svc.AssignRole(ctx, carol.ID, role.ID))
		require.NoError(t, svc.AssignRole(ctx, carol.ID, role.ID))

		u, err := svc.Get(ctx, carol.ID)
		require.NoError(t, err)
		require.Equal(t, []string{role.ID}, u.RoleIDs)
	})

	t.Run("remove drops the reference", func(t *testing.T) {
		require.NoError(t, svc.RemoveRole(ctx, carol.ID, role.ID))

		u, err := svc.Get(ctx, carol.ID)
		require.NoError(t, err)
		require.Empty(t, u.RoleIDs)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		require.ErrorIs(t, svc.AssignRole(ctx, carol.ID, "missing"), ErrRoleNotFound)
	})
}

func TestStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	mustUser(t, st, "dave", "hash")

	t.Run("duplicate username", func(t *testing.T) {
		err := st.Users().CreateUser(ctx, domain.User{
			ID: "other-id", Username: "dave", Email: "unique@example.com",
			PasswordHash: "hash", Status: domain.UserActive,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := st.Users().CreateUser(ctx, domain.User{
			ID: "other-id", Username: "unique", Email: "dave@example.com",
			PasswordHash: "hash", Status: domain.UserActive,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}
