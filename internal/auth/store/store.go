package store

import (
	"context"
	"errors"

	"github.com/vultlabs/vult/internal/auth/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is surfaced when a unique constraint rejects a
	// write (username, email, role name, privilege triple, invitation
	// value). The constraint is the authoritative conflict signal; any
	// existence pre-check in a service is only a courtesy.
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users
	Roles() Roles
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn
	// rolls back; nil commits. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user with their role reference set loaded.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during authentication.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns all users ordered by creation (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user and their role references. Duplicate
	// username or email returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateStatus records a lifecycle transition with its reason.
	UpdateStatus(ctx context.Context, userID string, status domain.UserStatus, reason string) error

	// UpdatePasswordHash sets the stored credential blob.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// RecordLoginSuccess resets the failed-attempt counter and stamps
	// last_login_at.
	RecordLoginSuccess(ctx context.Context, userID string) error

	// RecordLoginFailure increments the failed-attempt counter and stamps
	// last_failed_login_at.
	RecordLoginFailure(ctx context.Context, userID string) error

	// AssignRole adds a role reference; assigning a held role is a no-op.
	AssignRole(ctx context.Context, userID, roleID string) error

	// RemoveRole drops a role reference.
	RemoveRole(ctx context.Context, userID, roleID string) error
}

type Roles interface {
	// GetRoleByID returns a role with its privileges loaded.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRoleByName returns a role by its exact, case-sensitive name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// GetRolesByNames resolves a set of role names to roles with
	// privileges. Unknown names are silently skipped.
	GetRolesByNames(ctx context.Context, names []string) ([]domain.Role, error)

	// ListForUser returns the roles referenced by a user, privileges loaded.
	ListForUser(ctx context.Context, userID string) ([]domain.Role, error)

	// ListAll returns every role with privileges.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a role and its privileges. A duplicate name
	// returns ErrAlreadyExists.
	CreateRole(ctx context.Context, r domain.Role) error

	// RenameRole changes the role name, subject to the unique constraint.
	RenameRole(ctx context.Context, roleID, name string) error

	// AddPrivilege inserts one privilege row. A duplicate
	// (role, aggregate, access right) triple returns ErrAlreadyExists.
	AddPrivilege(ctx context.Context, p domain.Privilege) error

	// DeletePrivilege removes one privilege row.
	DeletePrivilege(ctx context.Context, privilegeID string) error

	// DeleteRole removes the role; the schema cascades to its privileges
	// and user role references.
	DeleteRole(ctx context.Context, roleID string) error
}

type Invitations interface {
	// CreateInvitation writes a new invitation token. A duplicate value
	// returns ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.InvitationToken) error

	// GetInvitationByValue looks an invitation up by its opaque value.
	GetInvitationByValue(ctx context.Context, value string) (domain.InvitationToken, error)

	// ListInvitations returns all invitations (newest first).
	ListInvitations(ctx context.Context) ([]domain.InvitationToken, error)

	// MarkInvitationAccepted records redemption (transaction-friendly).
	MarkInvitationAccepted(ctx context.Context, invitationID, acceptedBy string) error

	// CancelInvitation revokes an invitation before redemption.
	CancelInvitation(ctx context.Context, invitationID string) error

	// DeleteExpiredInvitations is housekeeping for expired, unaccepted rows.
	DeleteExpiredInvitations(ctx context.Context) error
}
