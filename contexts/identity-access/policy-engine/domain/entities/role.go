package entities

// Role is an organization- and portal-scoped bundle of permission codes.
// Keys are unique within (organization, portal), not globally.
type Role struct {
	ID             string   `json:"role_id"`
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	Portal         Portal   `json:"portal"`
	OrganizationID string   `json:"organization_id"`
	Permissions    []string `json:"permissions"`
	IsSystem       bool     `json:"is_system"`
}

// User carries the role assignment consumed by the policy synchronizer.
type User struct {
	ID             string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Portal         Portal `json:"portal"`
	RoleKey        string `json:"role_key"`
	RoleID         string `json:"role_id"`
}
