package service

import (
	"context"

	"github.com/vultlabs/vult/internal/auth/domain"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/pkg/slogx"
)

// RequiredPrivilege names the capability an operation demands.
type RequiredPrivilege struct {
	Right     domain.AccessRight
	Aggregate string
}

// requiredPrivileges maps every protected operation to the privilege it
// demands. An operation missing from this table is denied outright.
var requiredPrivileges = map[string]RequiredPrivilege{
	"users.read":   {domain.AccessRead, "User"},
	"users.write":  {domain.AccessWrite, "User"},
	"users.delete": {domain.AccessDelete, "User"},

	"roles.read":   {domain.AccessRead, "Role"},
	"roles.create": {domain.AccessCreate, "Role"},
	"roles.write":  {domain.AccessWrite, "Role"},
	"roles.delete": {domain.AccessDelete, "Role"},

	"invitations.create": {domain.AccessCreate, "InvitationToken"},
	"invitations.read":   {domain.AccessRead, "InvitationToken"},
	"invitations.delete": {domain.AccessDelete, "InvitationToken"},
}

// RequiredPrivilegeFor exposes the operation table for introspection.
func RequiredPrivilegeFor(operation string) (RequiredPrivilege, bool) {
	req, ok := requiredPrivileges[operation]
	return req, ok
}

// IsPermitted is the pure decision function: does any privilege in the
// role set satisfy the required right on the aggregate? Empty role sets,
// empty privilege sets and unknown aggregates all deny.
func IsPermitted(roles []domain.Role, required domain.AccessRight, aggregate string) bool {
	for _, role := range roles {
		for _, p := range role.Privileges {
			if p.Aggregate == aggregate && p.AccessRight.Satisfies(required) {
				return true
			}
		}
	}
	return false
}

// AuthzService resolves a user's current role set and evaluates the
// decision function against the operation table.
type AuthzService struct {
	Store store.Store
}

// Authorize reports whether userID may perform the named operation.
// Decisions use the user's roles as stored now, not as captured in their
// token, so privilege revocation takes effect without waiting for token
// expiry. Unknown operations and lookup failures deny.
func (s *AuthzService) Authorize(ctx context.Context, userID, operation string) (bool, error) {
	log := slogx.FromContext(ctx)

	req, ok := requiredPrivileges[operation]
	if !ok {
		log.Warn("authorization requested for unknown operation", "operation", operation)
		return false, nil
	}

	roles, err := s.Store.Roles().ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	return IsPermitted(roles, req.Right, req.Aggregate), nil
}
