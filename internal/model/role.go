package model

import "fmt"

// Role is the closed set of caller roles accepted by the engine.  The
// role arrives with the authenticated identity (JWT "role" claim) and
// is parsed exactly once at the middleware boundary.  Handlers and
// services express authorization through the capability predicates
// below instead of comparing raw strings.
type Role string

const (
    RoleSuperAdmin Role = "SUPER_ADMIN"
    RoleAdmin      Role = "ADMIN"
    RoleStaff      Role = "STAFF"
    RoleUser       Role = "USER"
)

// ParseRole validates a raw role claim.  Unknown roles are rejected.
func ParseRole(s string) (Role, error) {
    switch Role(s) {
    case RoleSuperAdmin, RoleAdmin, RoleStaff, RoleUser:
        return Role(s), nil
    }
    return "", fmt.Errorf("unknown role %q", s)
}

// CanPlaceOrders reports whether the role may create, pay, cancel and
// return its own orders.  All authenticated roles may.
func (r Role) CanPlaceOrders() bool {
    switch r {
    case RoleSuperAdmin, RoleAdmin, RoleStaff, RoleUser:
        return true
    }
    return false
}

// CanManageAnyOrder reports whether the role may operate on orders it
// does not own (staff desk cancellations, admin refunds).
func (r Role) CanManageAnyOrder() bool {
    return r == RoleSuperAdmin || r == RoleAdmin || r == RoleStaff
}

// CanRedeemTokens reports whether the role may resolve redemption
// tokens at the entry or pickup desk.
func (r Role) CanRedeemTokens() bool {
    return r == RoleSuperAdmin || r == RoleAdmin || r == RoleStaff
}
