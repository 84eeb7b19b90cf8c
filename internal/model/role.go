package model

// Role is a club role stored in user_roles. It is never taken from the token.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleGuest:  0,
	RoleMember: 1,
	RoleStaff:  2,
	RoleAdmin:  3,
}

// Valid reports whether r is one of the known club roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min. Unknown roles rank below guest.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

// ParseRole returns the role named s, or RoleGuest with false when s is unknown.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if !r.Valid() {
		return RoleGuest, false
	}
	return r, true
}
