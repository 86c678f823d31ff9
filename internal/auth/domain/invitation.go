package domain

import "time"

// InvitationType distinguishes invitation classes. Elevated invitations
// are minted for onboarding users into administrative roles and are held
// to stricter issuing rules.
type InvitationType string

const (
	InvitationStandard InvitationType = "standard"
	InvitationElevated InvitationType = "elevated"
)

// InvitationToken is a single-use onboarding credential that bypasses
// normal authentication. The Value is a 256-bit random opaque string with
// a store-level unique constraint as defense in depth.
type InvitationToken struct {
	ID        string
	Email     string
	Value     string
	Type      InvitationType
	InvitedBy string
	RoleIDs   []string // roles granted to the account created on redemption

	ExpiresAt  *time.Time // nil means no expiry
	AcceptedAt *time.Time
	AcceptedBy string
	Cancelled  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Redeemable reports whether the invitation can still be redeemed at t.
func (inv InvitationToken) Redeemable(t time.Time) bool {
	if inv.Cancelled || inv.AcceptedAt != nil {
		return false
	}
	if inv.ExpiresAt != nil && t.After(*inv.ExpiresAt) {
		return false
	}
	return true
}
