package models

// Role names as stored in the users collection and carried in JWT claims.
const (
	RoleManager = "MANAGER"
	RoleTasker  = "TASKER"
)

// Actor identifies the caller of a service operation. Handlers build it from
// the authenticated request; services never read identity from ambient
// request state.
type Actor struct {
	ID        string
	Role      string
	IPAddress string
	UserAgent string
}

// IsManager reports whether the actor holds the manager role.
func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

// IsTasker reports whether the actor holds the tasker role.
func (a Actor) IsTasker() bool {
	return a.Role == RoleTasker
}
