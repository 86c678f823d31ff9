package service

import (
	"context"
	"testing"
	"time"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/pkg/cryptox"

	"github.com/stretchr/testify/require"
)

func newTestInvitations(t *testing.T) (*InvitationService, *RolesService) {
	t.Helper()

	st := newTestStore(t)
	return &InvitationService{Store: st, Hasher: cryptox.NewHasher(cryptox.BaselineIterations)},
		&RolesService{Store: st}
}

func TestInvitationMint(t *testing.T) {
	ctx := context.Background()
	svc, roles := newTestInvitations(t)

	viewer, err := roles.Create(ctx, "viewer", []PrivilegeInput{
		{Aggregate: "User", AccessRight: domain.AccessRead},
	})
	require.NoError(t, err)

	admin, err := roles.Create(ctx, "admin", []PrivilegeInput{
		{Aggregate: "Role", AccessRight: domain.AccessCreate},
	})
	require.NoError(t, err)

	t.Run("mints a standard invitation", func(t *testing.T) {
		inv, err := svc.Mint(ctx, "new@example.com", domain.InvitationStandard,
			[]string{viewer.ID}, nil, "minter-id")
		require.NoError(t, err)
		require.NotEmpty(t, inv.Value)
		require.Equal(t, []string{viewer.ID}, inv.RoleIDs)

		// Values are URL-safe base64 of 32 random bytes.
		require.Len(t, inv.Value, 43)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Mint(ctx, "new@example.com", domain.InvitationStandard,
			[]string{"missing"}, nil, "minter-id")
		require.ErrorIs(t, err, ErrInvalidInvitation)
	})

	t.Run("past expiry rejected", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		_, err := svc.Mint(ctx, "new@example.com", domain.InvitationStandard,
			[]string{viewer.ID}, &past, "minter-id")
		require.ErrorIs(t, err, ErrInvalidInvitation)
	})

	t.Run("administrative roles need an elevated invitation", func(t *testing.T) {
		_, err := svc.Mint(ctx, "boss@example.com", domain.InvitationStandard,
			[]string{admin.ID}, nil, "minter-id")
		require.ErrorIs(t, err, ErrInvalidInvitation)

		inv, err := svc.Mint(ctx, "boss@example.com", domain.InvitationElevated,
			[]string{admin.ID}, nil, "minter-id")
		require.NoError(t, err)
		require.Equal(t, domain.InvitationElevated, inv.Type)
	})

	t.Run("empty email and unknown type rejected", func(t *testing.T) {
		_, err := svc.Mint(ctx, "", domain.InvitationStandard, nil, nil, "minter-id")
		require.ErrorIs(t, err, ErrInvalidInvitation)

		_, err = svc.Mint(ctx, "x@example.com", domain.InvitationType("vip"), nil, nil, "minter-id")
		require.ErrorIs(t, err, ErrInvalidInvitation)
	})
}

func TestInvitationRedeem(t *testing.T) {
	ctx := context.Background()
	svc, roles := newTestInvitations(t)
	st := svc.Store

	viewer, err := roles.Create(ctx, "viewer", []PrivilegeInput{
		{Aggregate: "User", AccessRight: domain.AccessRead},
	})
	require.NoError(t, err)

	inv, err := svc.Mint(ctx, "frank@example.com", domain.InvitationStandard,
		[]string{viewer.ID}, nil, "minter-id")
	require.NoError(t, err)

	t.Run("creates the invited account", func(t *testing.T) {
		u, err := svc.Redeem(ctx, inv.Value, "frank", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "frank@example.com", u.Email)
		require.Equal(t, []string{viewer.ID}, u.RoleIDs)
		require.Equal(t, domain.UserActive, u.Status)

		stored, err := st.Users().GetUserByUsername(ctx, "frank")
		require.NoError(t, err)
		require.True(t, svc.Hasher.Verify("hunter2", stored.PasswordHash))

		redeemed, err := st.Invitations().GetInvitationByValue(ctx, inv.Value)
		require.NoError(t, err)
		require.NotNil(t, redeemed.AcceptedAt)
		require.Equal(t, u.ID, redeemed.AcceptedBy)
	})

	t.Run("second redemption fails", func(t *testing.T) {
		_, err := svc.Redeem(ctx, inv.Value, "frank2", "hunter2")
		require.ErrorIs(t, err, ErrInvitationNotRedeemable)
	})

	t.Run("unknown value fails the same way", func(t *testing.T) {
		_, err := svc.Redeem(ctx, "no-such-value", "gina", "pw")
		require.ErrorIs(t, err, ErrInvitationNotRedeemable)
	})

	t.Run("cancelled invitation fails", func(t *testing.T) {
		other, err := svc.Mint(ctx, "gina@example.com", domain.InvitationStandard, nil, nil, "minter-id")
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, other.ID))

		_, err = svc.Redeem(ctx, other.Value, "gina", "pw")
		require.ErrorIs(t, err, ErrInvitationNotRedeemable)
	})

	t.Run("roles deleted after minting drop out of the grant", func(t *testing.T) {
		doomed, err := roles.Create(ctx, "doomed", []PrivilegeInput{
			{Aggregate: "Role", AccessRight: domain.AccessRead},
		})
		require.NoError(t, err)

		inv, err := svc.Mint(ctx, "iris@example.com", domain.InvitationStandard,
			[]string{viewer.ID, doomed.ID}, nil, "minter-id")
		require.NoError(t, err)

		require.NoError(t, roles.Delete(ctx, doomed.ID))

		u, err := svc.Redeem(ctx, inv.Value, "iris", "pw")
		require.NoError(t, err)
		require.Equal(t, []string{viewer.ID}, u.RoleIDs)

		stored, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, []string{viewer.ID}, stored.RoleIDs)
	})

	t.Run("username conflict rolls acceptance back", func(t *testing.T) {
		clash, err := svc.Mint(ctx, "clash@example.com", domain.InvitationStandard, nil, nil, "minter-id")
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, clash.Value, "frank", "pw")
		require.ErrorIs(t, err, ErrAccountExists)

		// Still redeemable under a free username.
		u, err := svc.Redeem(ctx, clash.Value, "henry", "pw")
		require.NoError(t, err)
		require.Equal(t, "clash@example.com", u.Email)
	})
}

func TestInvitationHousekeeping(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestInvitations(t)
	st := svc.Store

	soon := time.Now().Add(time.Minute)
	live, err := svc.Mint(ctx, "live@example.com", domain.InvitationStandard, nil, &soon, "minter-id")
	require.NoError(t, err)

	// Expired rows are written straight through the store; Mint refuses
	// past expiries.
	expired := domain.InvitationToken{
		ID:    "expired-id",
		Email: "old@example.com",
		Value: "expired-value",
		Type:  domain.InvitationStandard,
	}
	past := time.Now().Add(-time.Hour)
	expired.ExpiresAt = &past
	require.NoError(t, st.Invitations().CreateInvitation(ctx, expired))

	require.NoError(t, st.Invitations().DeleteExpiredInvitations(ctx))

	_, err = st.Invitations().GetInvitationByValue(ctx, "expired-value")
	require.Error(t, err)

	_, err = st.Invitations().GetInvitationByValue(ctx, live.Value)
	require.NoError(t, err)
}
