package domain

// Actor identifies who performs a mutation. It fills created_by/updated_by and audit user ids.
type Actor struct {
	UserID *int64
	Name   string
	Role   Role
}

var (
	SystemActor    = Actor{Name: "system"}
	AnonymousActor = Actor{Name: "anonymous"}
)

// UserActor builds an actor from an authenticated user
func UserActor(u *User) Actor {
	id := u.ID
	return Actor{UserID: &id, Name: u.Email, Role: u.Role}
}

// IsAdmin reports whether the actor may perform admin-only changes
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Name == SystemActor.Name
}

// Is reports whether the actor is the given user
func (a Actor) Is(userID int64) bool {
	return a.UserID != nil && *a.UserID == userID
}
