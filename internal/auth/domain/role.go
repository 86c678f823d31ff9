package domain

import "time"

// Role is a named bundle of privileges. Role names are unique and
// case-sensitive; uniqueness is enforced by the store's constraint, not
// by a pre-check.
type Role struct {
	ID         string
	Name       string
	Privileges []Privilege // exclusively owned; deleting the role deletes these
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Privilege grants one capability on one aggregate. It belongs to exactly
// one role and the (role, aggregate, access right) triple is unique.
type Privilege struct {
	ID          string
	RoleID      string
	Aggregate   string
	AccessRight AccessRight
}

// RoleNames flattens a role set into its names, preserving order.
func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}
