package entities

import "time"

// Decision is the result of one enforcement evaluation.
type Decision struct {
	UserID         string    `json:"user_id"`
	Resource       string    `json:"resource"`
	Action         string    `json:"action"`
	OrganizationID string    `json:"organization_id"`
	Portal         Portal    `json:"portal"`
	Allowed        bool      `json:"allowed"`
	Reason         string    `json:"reason"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Decision reasons. Deny reasons are deliberately coarse; internal store
// detail never crosses the module boundary inside a decision.
const (
	ReasonPermissionGranted = "permission_granted"
	ReasonPermissionMissing = "permission_missing"
	ReasonNoRoleAssigned    = "no_role_assigned"
	ReasonOrgNotScoped      = "organization_not_scoped"
	ReasonDenyByDefault     = "deny_by_default"
)
