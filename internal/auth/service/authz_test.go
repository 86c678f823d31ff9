package service

import (
	"context"
	"testing"

	"github.com/vultlabs/vult/internal/auth/domain"

	"github.com/stretchr/testify/require"
)

func rolesWith(privs ...domain.Privilege) []domain.Role {
	return []domain.Role{{ID: "r1", Name: "test", Privileges: privs}}
}

func TestIsPermitted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		roles     []domain.Role
		required  domain.AccessRight
		aggregate string
		want      bool
	}{
		{
			name:      "read satisfied by read",
			roles:     rolesWith(domain.Privilege{Aggregate: "User", AccessRight: domain.AccessRead}),
			required:  domain.AccessRead,
			aggregate: "User",
			want:      true,
		},
		{
			name:      "read satisfied by write",
			roles:     rolesWith(domain.Privilege{Aggregate: "User", AccessRight: domain.AccessWrite}),
			required:  domain.AccessRead,
			aggregate: "User",
			want:      true,
		},
		{
			name:      "write not satisfied by read",
			roles:     rolesWith(domain.Privilege{Aggregate: "User", AccessRight: domain.AccessRead}),
			required:  domain.AccessWrite,
			aggregate: "User",
			want:      false,
		},
		{
			name:      "create requires exact create",
			roles:     rolesWith(domain.Privilege{Aggregate: "Role", AccessRight: domain.AccessWrite}),
			required:  domain.AccessCreate,
			aggregate: "Role",
			want:      false,
		},
		{
			name:      "create satisfied by create",
			roles:     rolesWith(domain.Privilege{Aggregate: "Role", AccessRight: domain.AccessCreate}),
			required:  domain.AccessCreate,
			aggregate: "Role",
			want:      true,
		},
		{
			name:      "delete does not imply read",
			roles:     rolesWith(domain.Privilege{Aggregate: "User", AccessRight: domain.AccessDelete}),
			required:  domain.AccessRead,
			aggregate: "User",
			want:      false,
		},
		{
			name:      "aggregate must match",
			roles:     rolesWith(domain.Privilege{Aggregate: "Role", AccessRight: domain.AccessWrite}),
			required:  domain.AccessRead,
			aggregate: "User",
			want:      false,
		},
		{
			name:      "no roles denies",
			roles:     nil,
			required:  domain.AccessRead,
			aggregate: "User",
			want:      false,
		},
		{
			name:      "role without privileges denies",
			roles:     []domain.Role{{ID: "r1", Name: "empty"}},
			required:  domain.AccessRead,
			aggregate: "User",
			want:      false,
		},
		{
			name:      "required none is never satisfied",
			roles:     rolesWith(domain.Privilege{Aggregate: "User", AccessRight: domain.AccessDelete}),
			required:  domain.AccessNone,
			aggregate: "User",
			want:      false,
		},
		{
			name: "any role in the set can grant",
			roles: []domain.Role{
				{ID: "r1", Name: "reader", Privileges: []domain.Privilege{{Aggregate: "Role", AccessRight: domain.AccessRead}}},
				{ID: "r2", Name: "editor", Privileges: []domain.Privilege{{Aggregate: "User", AccessRight: domain.AccessWrite}}},
			},
			required:  domain.AccessWrite,
			aggregate: "User",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, IsPermitted(tt.roles, tt.required, tt.aggregate))
		})
	}
}

func TestAuthzServiceAuthorize(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuthzService{Store: st}

	admin := mustRole(t, st, "admin",
		domain.Privilege{Aggregate: "User", AccessRight: domain.AccessWrite},
		domain.Privilege{Aggregate: "Role", AccessRight: domain.AccessCreate},
	)
	alice := mustUser(t, st, "alice", "hash", admin.ID)
	bob := mustUser(t, st, "bob", "hash")

	t.Run("grants mapped operation", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, alice.ID, "users.write")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = svc.Authorize(ctx, alice.ID, "roles.create")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("write grant implies read", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, alice.ID, "users.read")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("denies operations beyond the grant", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, alice.ID, "users.delete")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("denies user without roles", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, bob.ID, "users.read")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("denies unknown operation", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, alice.ID, "users.frobnicate")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestRequiredPrivilegeFor(t *testing.T) {
	t.Parallel()

	req, ok := RequiredPrivilegeFor("roles.create")
	require.True(t, ok)
	require.Equal(t, domain.AccessCreate, req.Right)
	require.Equal(t, "Role", req.Aggregate)

	_, ok = RequiredPrivilegeFor("nonsense")
	require.False(t, ok)
}
