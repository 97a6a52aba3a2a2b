package entities

import "fmt"

// Action is an operation that can be granted on a resource
type Action string

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionManageFields Action = "manage_fields"
)

// ResourceWildcard grants an action on every resource
const ResourceWildcard = "*"

// Permission grants a set of actions on a resource.
// Resource is either a concrete entity kind name or ResourceWildcard.
// There are no negative permissions: absence of a grant is the only deny.
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []Action `json:"actions"`
}

// Allows reports whether this permission grants action on resource
func (p *Permission) Allows(resource string, action Action) bool {
	if p.Resource != ResourceWildcard && p.Resource != resource {
		return false
	}
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Validate checks if the permission is well-formed
func (p *Permission) Validate() error {
	if p.Resource == "" {
		return fmt.Errorf("permission resource is required")
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("permission must grant at least one action")
	}
	for _, a := range p.Actions {
		switch a {
		case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManageFields:
		default:
			return fmt.Errorf("unknown action: %s", a)
		}
	}
	return nil
}
