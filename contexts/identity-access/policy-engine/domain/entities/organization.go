package entities

// Portal names an application surface with its own permission vocabulary.
type Portal string

const (
	PortalAdmin    Portal = "admin_portal"
	PortalCustomer Portal = "customer_portal"
	PortalVendor   Portal = "vendor_portal"
)

// OrganizationType classifies a tenant by the portal archetypes it receives.
type OrganizationType string

const (
	OrgTypeAdmin    OrganizationType = "admin"
	OrgTypeCustomer OrganizationType = "customer"
	OrgTypeVendor   OrganizationType = "vendor"
)

// Organization is the tenant isolation boundary. Every grant is scoped to
// exactly one organization.
type Organization struct {
	ID       string           `json:"organization_id"`
	Type     OrganizationType `json:"type"`
	Portal   Portal           `json:"portal"`
	IsActive bool             `json:"is_active"`
}
