package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/pkg/cryptox"
	"github.com/vultlabs/vult/pkg/slogx"
)

var (
	ErrUserNotFound = errors.New("user_not_found")

	// ErrInvalidTransition means the requested lifecycle change is not
	// allowed from the account's current status.
	ErrInvalidTransition = errors.New("invalid_status_transition")

	ErrPasswordMismatch = errors.New("password_mismatch")
)

// UserService manages user lookups and account lifecycle.
type UserService struct {
	Store  store.Store
	Hasher cryptox.Hasher
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// Lifecycle transitions. Each is a guarded status change recorded with
// its reason. Deleted accounts are terminal except for Restore.

func (s *UserService) Activate(ctx context.Context, userID, reason string) error {
	return s.transition(ctx, userID, reason, domain.UserActive, domain.UserInactive)
}

func (s *UserService) Deactivate(ctx context.Context, userID, reason string) error {
	return s.transition(ctx, userID, reason, domain.UserInactive, domain.UserActive)
}

func (s *UserService) Lock(ctx context.Context, userID, reason string) error {
	return s.transition(ctx, userID, reason, domain.UserLocked, domain.UserActive, domain.UserInactive)
}

func (s *UserService) Unlock(ctx context.Context, userID, reason string) error {
	return s.transition(ctx, userID, reason, domain.UserActive, domain.UserLocked)
}

// Delete soft-deletes the account. The row is kept for audit.
func (s *UserService) Delete(ctx context.Context, userID, reason string) error {
	return s.transition(ctx, userID, reason, domain.UserDeleted,
		domain.UserActive, domain.UserInactive, domain.UserLocked)
}

// Restore brings a soft-deleted account back as inactive; an explicit
// Activate is required before it can log in again.
func (s *UserService) Restore(ctx context.Context, userID, reason string) error {
	return s.transition(ctx, userID, reason, domain.UserInactive, domain.UserDeleted)
}

func (s *UserService) transition(ctx context.Context, userID, reason string, to domain.UserStatus, from ...domain.UserStatus) error {
	log := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		allowed := false
		for _, f := range from {
			if u.Status == f {
				allowed = true
				break
			}
		}
		if !allowed {
			log.Warn("rejected status transition",
				slog.String("user_id", userID),
				slog.String("from", string(u.Status)),
				slog.String("to", string(to)),
			)
			return ErrInvalidTransition
		}

		if err := tx.Users().UpdateStatus(ctx, userID, to, reason); err != nil {
			return err
		}

		log.Info("user status changed",
			slog.String("user_id", userID),
			slog.String("from", string(u.Status)),
			slog.String("to", string(to)),
		)
		return nil
	})
}

// AssignRole grants a role to a user. Granting a held role is a no-op.
func (s *UserService) AssignRole(ctx context.Context, userID, roleID string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	if _, err := s.Store.Roles().GetRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	return s.Store.Users().AssignRole(ctx, userID, roleID)
}

// RemoveRole revokes a role from a user.
func (s *UserService) RemoveRole(ctx context.Context, userID, roleID string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	return s.Store.Users().RemoveRole(ctx, userID, roleID)
}

// ChangePassword verifies the current password and installs a new hash.
// The mismatch answer is uniform and reveals nothing else.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	log := slogx.FromContext(ctx)

	if newPassword == "" {
		return ErrPasswordMismatch
	}

	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !s.Hasher.Verify(oldPassword, u.PasswordHash) {
		log.Warn("password change rejected", slog.String("user_id", userID))
		return ErrPasswordMismatch
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	log.Info("password changed", slog.String("user_id", userID))
	return nil
}
