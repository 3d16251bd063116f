package identity

// Role is the closed set of portal roles.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleTeacher
	RoleStudent
)

// Login id prefixes. The first two characters of a login id select the role.
const (
	PrefixAdmin   = "65"
	PrefixTeacher = "70"
	PrefixStudent = "83"
)

// RoleFromLogin derives the role from a login id prefix. It is total: short or
// unrecognised ids yield RoleUnknown.
func RoleFromLogin(loginID string) Role {
	if len(loginID) < 2 {
		return RoleUnknown
	}
	switch loginID[:2] {
	case PrefixAdmin:
		return RoleAdmin
	case PrefixTeacher:
		return RoleTeacher
	case PrefixStudent:
		return RoleStudent
	default:
		return RoleUnknown
	}
}

// ParseRole reads the role claim carried in a token.
func ParseRole(s string) Role {
	switch s {
	case "admin":
		return RoleAdmin
	case "teacher":
		return RoleTeacher
	case "student":
		return RoleStudent
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeacher:
		return "teacher"
	case RoleStudent:
		return "student"
	default:
		return "unknown"
	}
}

// Prefix returns the login id prefix for r, or "" for RoleUnknown.
func (r Role) Prefix() string {
	switch r {
	case RoleAdmin:
		return PrefixAdmin
	case RoleTeacher:
		return PrefixTeacher
	case RoleStudent:
		return PrefixStudent
	default:
		return ""
	}
}
