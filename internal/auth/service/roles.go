package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/pkg/idx"
	"github.com/vultlabs/vult/pkg/slogx"
)

var (
	ErrInvalidRoleRequest = errors.New("invalid_role_request")
	ErrRoleNotFound       = errors.New("role_not_found")

	// ErrRoleConflict covers a taken role name as well as a duplicate
	// (aggregate, access right) pair within one role. The store's unique
	// constraints are the authoritative signal for both.
	ErrRoleConflict = errors.New("role_conflict")
)

// PrivilegeInput is one requested privilege in a create/update call.
// A populated ID refers to an existing privilege of the role; an empty
// ID asks for a new one.
type PrivilegeInput struct {
	ID          string
	Aggregate   string
	AccessRight domain.AccessRight
}

// RolesService manages roles and the privileges they own.
type RolesService struct {
	Store store.Store
}

// Create inserts a new role with the given privileges. The role name
// must be unique; the store constraint decides, not a pre-check.
func (s *RolesService) Create(ctx context.Context, name string, privileges []PrivilegeInput) (domain.Role, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Role{}, ErrInvalidRoleRequest
	}
	for _, p := range privileges {
		if p.Aggregate == "" || p.AccessRight == domain.AccessNone {
			return domain.Role{}, ErrInvalidRoleRequest
		}
	}

	role := domain.Role{
		ID:   idx.New().String(),
		Name: name,
	}
	for _, p := range privileges {
		role.Privileges = append(role.Privileges, domain.Privilege{
			ID:          idx.New().String(),
			RoleID:      role.ID,
			Aggregate:   p.Aggregate,
			AccessRight: p.AccessRight,
		})
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Roles().CreateRole(ctx, role)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("role create conflict", slog.String("name", name))
			return domain.Role{}, ErrRoleConflict
		}
		log.Error("failed to create role", slog.Any("error", err))
		return domain.Role{}, err
	}

	log.Info("role created", slog.String("role_id", role.ID), slog.String("name", name))
	return s.Get(ctx, role.ID)
}

// Update renames a role and reconciles its privilege set against the
// requested one:
//
//   - inputs carrying the ID of an existing privilege keep that id and
//     take the requested aggregate and right
//   - inputs without an ID become new privileges
//   - existing privileges absent from the input are removed
//
// The whole reconciliation is one transaction; a conflict anywhere rolls
// back everything.
func (s *RolesService) Update(ctx context.Context, roleID, name string, privileges []PrivilegeInput) (domain.Role, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Role{}, ErrInvalidRoleRequest
	}
	for _, p := range privileges {
		if p.Aggregate == "" || p.AccessRight == domain.AccessNone {
			return domain.Role{}, ErrInvalidRoleRequest
		}
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Roles().GetRoleByID(ctx, roleID)
		if err != nil {
			return err
		}

		if existing.Name != name {
			if err := tx.Roles().RenameRole(ctx, roleID, name); err != nil {
				return err
			}
		}

		current := make(map[string]domain.Privilege, len(existing.Privileges))
		for _, p := range existing.Privileges {
			current[p.ID] = p
		}

		// Changed privileges are re-created under their original id, and
		// every delete runs before any insert. A transient duplicate
		// (aggregate, right) pair must not trip the unique constraint
		// when the final set is conflict free.
		keep := make(map[string]struct{}, len(privileges))
		var inserts []domain.Privilege
		for _, in := range privileges {
			if in.ID == "" {
				inserts = append(inserts, domain.Privilege{
					ID:          idx.New().String(),
					RoleID:      roleID,
					Aggregate:   in.Aggregate,
					AccessRight: in.AccessRight,
				})
				continue
			}

			have, ok := current[in.ID]
			if !ok {
				return ErrInvalidRoleRequest
			}

			if have.Aggregate != in.Aggregate || have.AccessRight != in.AccessRight {
				inserts = append(inserts, domain.Privilege{
					ID:          in.ID,
					RoleID:      roleID,
					Aggregate:   in.Aggregate,
					AccessRight: in.AccessRight,
				})
				continue
			}
			keep[in.ID] = struct{}{}
		}

		for id := range current {
			if _, ok := keep[id]; !ok {
				if err := tx.Roles().DeletePrivilege(ctx, id); err != nil {
					return err
				}
			}
		}
		for _, p := range inserts {
			if err := tx.Roles().AddPrivilege(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.Role{}, ErrRoleNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			log.Warn("role update conflict", slog.String("role_id", roleID))
			return domain.Role{}, ErrRoleConflict
		case errors.Is(err, ErrInvalidRoleRequest):
			return domain.Role{}, err
		}
		log.Error("failed to update role", slog.String("role_id", roleID), slog.Any("error", err))
		return domain.Role{}, err
	}

	log.Info("role updated", slog.String("role_id", roleID))
	return s.Get(ctx, roleID)
}

// Delete removes a role. The schema cascades to its privileges and to
// every user's reference to it.
func (s *RolesService) Delete(ctx context.Context, roleID string) error {
	err := s.Store.Roles().DeleteRole(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoleNotFound
	}
	if err == nil {
		slogx.FromContext(ctx).Info("role deleted", slog.String("role_id", roleID))
	}
	return err
}

// Get fetches one role with its privileges.
func (s *RolesService) Get(ctx context.Context, roleID string) (domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrRoleNotFound
	}
	return role, err
}

// List returns every role with privileges.
func (s *RolesService) List(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}
