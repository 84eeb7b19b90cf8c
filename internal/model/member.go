package model

import "time"

// Member is a user with a club role.
type Member struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NavItem is one entry of the role-filtered navigation menu.
type NavItem struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Path    string `json:"path"`
	MinRole Role   `json:"-"`
}

var navigation = []NavItem{
	{Key: "workshops", Label: "Workshops", Path: "/workshops", MinRole: RoleGuest},
	{Key: "my-registrations", Label: "My registrations", Path: "/me/registrations", MinRole: RoleMember},
	{Key: "inventory", Label: "Inventory", Path: "/inventory", MinRole: RoleMember},
	{Key: "refunds", Label: "Refunds", Path: "/refunds", MinRole: RoleMember},
	{Key: "attendance", Label: "Attendance", Path: "/attendance", MinRole: RoleStaff},
	{Key: "analytics", Label: "Analytics", Path: "/analytics", MinRole: RoleStaff},
	{Key: "members", Label: "Members", Path: "/members", MinRole: RoleStaff},
	{Key: "invitations", Label: "Invitations", Path: "/invitations", MinRole: RoleAdmin},
}

// NavigationFor returns the menu entries visible to role.
func NavigationFor(role Role) []NavItem {
	out := make([]NavItem, 0, len(navigation))
	for _, item := range navigation {
		if role.AtLeast(item.MinRole) {
			out = append(out, item)
		}
	}
	return out
}
