package domain

import "fmt"

// AccessRight is an enumerated capability level granted by a privilege.
// The integer values are persisted; do not reorder.
type AccessRight int

const (
	AccessNone   AccessRight = 0
	AccessRead   AccessRight = 1
	AccessWrite  AccessRight = 2
	AccessCreate AccessRight = 3
	AccessDelete AccessRight = 4
)

// Satisfies reports whether a held right grants the required one.
//
// Policy, made explicit: Write implies Read on the same aggregate. Create
// and Delete are independent capabilities that imply nothing else and are
// implied by nothing else. A required right of None is never satisfied.
func (r AccessRight) Satisfies(required AccessRight) bool {
	switch required {
	case AccessRead:
		return r == AccessRead || r == AccessWrite
	case AccessWrite:
		return r == AccessWrite
	case AccessCreate:
		return r == AccessCreate
	case AccessDelete:
		return r == AccessDelete
	default:
		return false
	}
}

func (r AccessRight) String() string {
	switch r {
	case AccessNone:
		return "none"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessCreate:
		return "create"
	case AccessDelete:
		return "delete"
	default:
		return fmt.Sprintf("accessright(%d)", int(r))
	}
}

// ParseAccessRight converts the wire form ("read", "write", "create",
// "delete") back into an AccessRight.
func ParseAccessRight(s string) (AccessRight, error) {
	switch s {
	case "none":
		return AccessNone, nil
	case "read":
		return AccessRead, nil
	case "write":
		return AccessWrite, nil
	case "create":
		return AccessCreate, nil
	case "delete":
		return AccessDelete, nil
	default:
		return AccessNone, fmt.Errorf("unknown access right %q", s)
	}
}
