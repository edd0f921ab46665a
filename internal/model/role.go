package model

// Role is the symbolic name of a label the bot manages. Configuration maps
// each role to the provider's label id.
type Role string

const (
	RoleInactive            Role = "inactive"
	RolePendingClosure      Role = "pending_closure"
	RoleAutomaticallyClosed Role = "automatically_closed"
)

// Roles lists every managed role in escalation order.
func Roles() []Role {
	return []Role{RoleInactive, RolePendingClosure, RoleAutomaticallyClosed}
}

// LabelIDs maps each role to a provider label id.
type LabelIDs struct {
	Inactive            string `yaml:"inactive" json:"inactive"`
	PendingClosure      string `yaml:"pending_closure" json:"pending_closure"`
	AutomaticallyClosed string `yaml:"automatically_closed" json:"automatically_closed"`
}

// For returns the provider id configured for role.
func (l LabelIDs) For(role Role) string {
	switch role {
	case RoleInactive:
		return l.Inactive
	case RolePendingClosure:
		return l.PendingClosure
	case RoleAutomaticallyClosed:
		return l.AutomaticallyClosed
	default:
		return ""
	}
}

// HasRole reports whether the issue carries the label for role, matched
// either by its role name or by the configured provider id.
func (i Issue) HasRole(role Role, ids LabelIDs) bool {
	id := ids.For(role)
	for _, l := range i.Labels {
		if l.Name == string(role) {
			return true
		}
		if id != "" && l.ID == id {
			return true
		}
	}
	return false
}
