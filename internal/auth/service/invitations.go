package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/pkg/cryptox"
	"github.com/vultlabs/vult/pkg/idx"
	"github.com/vultlabs/vult/pkg/slogx"
)

var (
	ErrInvalidInvitation = errors.New("invalid_invitation")

	// ErrInvitationNotRedeemable is the uniform redemption failure:
	// unknown value, expired, cancelled and already-accepted all look the
	// same to the caller.
	ErrInvitationNotRedeemable = errors.New("invitation_not_redeemable")

	ErrInvitationNotFound = errors.New("invitation_not_found")
)

// InvitationService mints and redeems invitation tokens.
type InvitationService struct {
	Store  store.Store
	Hasher cryptox.Hasher
}

// Mint creates an invitation for the given email granting the given
// roles on redemption.
//
// Every role must exist. An invitation granting any role that carries a
// Create or Delete capability must be minted as elevated; this keeps
// administrative onboarding behind the stricter invitation class.
func (s *InvitationService) Mint(
	ctx context.Context,
	email string,
	invType domain.InvitationType,
	roleIDs []string,
	expiresAt *time.Time,
	invitedBy string,
) (domain.InvitationToken, error) {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" {
		return domain.InvitationToken{}, ErrInvalidInvitation
	}
	if invType != domain.InvitationStandard && invType != domain.InvitationElevated {
		return domain.InvitationToken{}, ErrInvalidInvitation
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		log.Warn("attempted to mint invitation with past expiry", slog.String("email", email))
		return domain.InvitationToken{}, ErrInvalidInvitation
	}

	needsElevated := false
	for _, roleID := range roleIDs {
		role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("attempted to mint invitation with unknown role",
					slog.String("role_id", roleID),
				)
				return domain.InvitationToken{}, ErrInvalidInvitation
			}
			return domain.InvitationToken{}, err
		}
		for _, p := range role.Privileges {
			if p.AccessRight == domain.AccessCreate || p.AccessRight == domain.AccessDelete {
				needsElevated = true
			}
		}
	}
	if needsElevated && invType != domain.InvitationElevated {
		log.Warn("standard invitation rejected for administrative role set",
			slog.String("email", email),
			slog.String("invited_by", invitedBy),
		)
		return domain.InvitationToken{}, ErrInvalidInvitation
	}

	value, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation value", slog.Any("error", err))
		return domain.InvitationToken{}, err
	}

	inv := domain.InvitationToken{
		ID:        idx.New().String(),
		Email:     email,
		Value:     value,
		Type:      invType,
		InvitedBy: invitedBy,
		RoleIDs:   roleIDs,
		ExpiresAt: expiresAt,
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.InvitationToken{}, err
	}

	log.Info("invitation minted",
		slog.String("invitation_id", inv.ID),
		slog.String("type", string(invType)),
		slog.String("invited_by", invitedBy),
	)
	return inv, nil
}

// Redeem consumes an invitation and creates the invited account with the
// invitation's roles. Account creation and acceptance are one
// transaction; a conflict on the username rolls both back.
func (s *InvitationService) Redeem(ctx context.Context, value, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if value == "" || strings.TrimSpace(username) == "" || password == "" {
		return domain.User{}, ErrInvitationNotRedeemable
	}

	inv, err := s.Store.Invitations().GetInvitationByValue(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("redemption attempted with unknown invitation value")
			return domain.User{}, ErrInvitationNotRedeemable
		}
		return domain.User{}, err
	}

	if !inv.Redeemable(time.Now()) {
		log.Warn("redemption attempted on spent invitation",
			slog.String("invitation_id", inv.ID),
		)
		return domain.User{}, ErrInvitationNotRedeemable
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(username),
		Email:        inv.Email,
		PasswordHash: hash,
		Status:       domain.UserActive,
		RoleIDs:      inv.RoleIDs,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Roles deleted since minting drop out of the grant; the
		// remaining ones must still resolve when the account is created.
		granted := make([]string, 0, len(inv.RoleIDs))
		for _, roleID := range inv.RoleIDs {
			_, err := tx.Roles().GetRoleByID(ctx, roleID)
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("invitation grants a deleted role",
					slog.String("invitation_id", inv.ID),
					slog.String("role_id", roleID),
				)
				continue
			}
			if err != nil {
				return err
			}
			granted = append(granted, roleID)
		}
		u.RoleIDs = granted

		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, u.ID)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			log.Warn("redemption conflict", slog.String("invitation_id", inv.ID))
			return domain.User{}, ErrAccountExists
		case errors.Is(err, store.ErrNotFound):
			// Lost the race against a concurrent redemption or cancel.
			return domain.User{}, ErrInvitationNotRedeemable
		}
		log.Error("failed to redeem invitation", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("invitation redeemed",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", u.ID),
	)
	return u, nil
}

// Cancel revokes an unaccepted invitation.
func (s *InvitationService) Cancel(ctx context.Context, invitationID string) error {
	err := s.Store.Invitations().CancelInvitation(ctx, invitationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvitationNotFound
	}
	if err == nil {
		slogx.FromContext(ctx).Info("invitation cancelled",
			slog.String("invitation_id", invitationID),
		)
	}
	return err
}

// List returns every invitation, newest first.
func (s *InvitationService) List(ctx context.Context) ([]domain.InvitationToken, error) {
	return s.Store.Invitations().ListInvitations(ctx)
}
