package entities

// Actor is the authenticated user in the current session.
// Permissions is a snapshot resolved from the role table at session start;
// later changes to the table do not alter an existing Actor.
type Actor struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
}

// Can reports whether any of the actor's permissions grants action on resource.
// A nil actor never grants anything.
func (a *Actor) Can(resource string, action Action) bool {
	if a == nil {
		return false
	}
	for i := range a.Permissions {
		if a.Permissions[i].Allows(resource, action) {
			return true
		}
	}
	return false
}
