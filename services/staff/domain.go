// Package staff manages waiter profiles and the role capability model.
package staff

import "time"

// Role represents a staff role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWaiter  Role = "waiter"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWaiter:
		return true
	}
	return false
}

// Permission names one capability a role may hold.
type Permission string

const (
	PermFloor          Permission = "floor"
	PermOrders         Permission = "orders"
	PermReservations   Permission = "reservations"
	PermMenuWrite      Permission = "menu:write"
	PermInventoryWrite Permission = "inventory:write"
	PermStaffAdmin     Permission = "staff:admin"
)

// rolePermissions is the single place role gating is defined. Handlers
// and services ask Can instead of comparing role strings.
var rolePermissions = map[Role]map[Permission]bool{
	RoleAdmin: {
		PermFloor:          true,
		PermOrders:         true,
		PermReservations:   true,
		PermMenuWrite:      true,
		PermInventoryWrite: true,
		PermStaffAdmin:     true,
	},
	RoleManager: {
		PermFloor:          true,
		PermOrders:         true,
		PermReservations:   true,
		PermMenuWrite:      true,
		PermInventoryWrite: true,
	},
	RoleWaiter: {
		PermFloor:        true,
		PermOrders:       true,
		PermReservations: true,
	},
}

// Can reports whether a role holds a permission. Unknown roles hold
// nothing.
func Can(role Role, perm Permission) bool {
	return rolePermissions[role][perm]
}

// Profile represents a staff member.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWaiterInput holds fields for creating a waiter account.
type NewWaiterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}
