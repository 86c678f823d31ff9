package service

import (
	"context"
	"testing"
	"time"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/internal/auth/store/drivers/sqlite"
	"github.com/vultlabs/vult/pkg/cryptox"
	"github.com/vultlabs/vult/pkg/idx"
	"github.com/vultlabs/vult/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	signer, err := jwtx.NewSignerHS256([]byte(testJWTSecret))
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256([]byte(testJWTSecret), "test-issuer", []string{"test"})
	require.NoError(t, err)

	return &TokenService{
		Signer:   signer,
		Verifier: verifier,
		Issuer:   "test-issuer",
		Audience: []string{"test"},
		TTL:      time.Minute,
	}
}

func newTestAuthn(t *testing.T, st store.Store) *AuthnService {
	t.Helper()

	svc, err := NewAuthnService(st, cryptox.NewHasher(cryptox.BaselineIterations), newTestTokenService(t), 2)
	require.NoError(t, err)
	return svc
}

// mustRole inserts a role holding one privilege per (aggregate, right) pair.
func mustRole(t *testing.T, st store.Store, name string, privs ...domain.Privilege) domain.Role {
	t.Helper()

	role := domain.Role{ID: idx.New().String(), Name: name}
	for _, p := range privs {
		p.ID = idx.New().String()
		p.RoleID = role.ID
		role.Privileges = append(role.Privileges, p)
	}
	require.NoError(t, st.Roles().CreateRole(context.Background(), role))
	return role
}

func mustUser(t *testing.T, st store.Store, username, passwordHash string, roleIDs ...string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
		Status:       domain.UserActive,
		RoleIDs:      roleIDs,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}
