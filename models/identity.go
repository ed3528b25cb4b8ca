package models

// Roles carried by an Identity
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity is the caller on whose behalf an operation runs. It is built per
// request from the bearer token and passed explicitly into every service call.
// The zero value is an anonymous guest.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Anonymous reports whether no account is attached to the request.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or act on the order.
// Guest orders are reachable by anyone holding their id.
func (i Identity) CanAccess(o *Order) bool {
	if i.IsAdmin() || o.UserID == nil {
		return true
	}
	return o.OwnedBy(i.UserID)
}
