package domain

import "time"

// UserStatus is the mutually exclusive lifecycle state of a user account.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserLocked   UserStatus = "locked"
	UserDeleted  UserStatus = "deleted" // soft delete, row is preserved for audit
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // base64(salt||pbkdf2 key)

	Status          UserStatus
	StatusChangedAt time.Time
	StatusReason    string // free text recorded at the last transition

	FailedLoginAttempts int
	LastFailedLoginAt   *time.Time
	LastLoginAt         *time.Time

	RoleIDs []string // references only; users never own roles

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanAuthenticate reports whether this account may log in at all.
// Inactive, locked and deleted accounts all fail authentication the same
// way an unknown username does.
func (u User) CanAuthenticate() bool {
	return u.Status == UserActive
}
