package catalog

import "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"

// RoleTemplate is one default role archetype seeded at organization creation.
type RoleTemplate struct {
	Key         string
	Name        string
	Permissions []string
}

// DefaultRoles returns the ordered archetype templates for an organization
// type and portal. Keys are disambiguated by organization scope, so the same
// template keys repeat across tenants.
func DefaultRoles(orgType entities.OrganizationType, portal entities.Portal) []RoleTemplate {
	switch {
	case orgType == entities.OrgTypeAdmin && portal == entities.PortalAdmin:
		return []RoleTemplate{
			{
				Key:  "platform_admin",
				Name: "Platform Administrator",
				Permissions: []string{
					"org-view", "org-manage", "user-view", "user-manage",
					"role-view", "role-manage", "billing-view", "billing-manage",
					"audit-view", "report-view", "settings-manage",
				},
			},
			{
				Key:  "platform_manager",
				Name: "Platform Manager",
				Permissions: []string{
					"org-view", "user-view", "user-manage",
					"role-view", "audit-view", "report-view",
				},
			},
			{
				Key:  "platform_accountant",
				Name: "Platform Accountant",
				Permissions: []string{
					"org-view", "billing-view", "billing-manage", "report-view",
				},
			},
			{
				Key:  "platform_viewer",
				Name: "Platform Viewer",
				Permissions: []string{
					"org-view", "user-view", "role-view",
					"billing-view", "audit-view", "report-view",
				},
			},
		}
	case orgType == entities.OrgTypeCustomer && portal == entities.PortalCustomer:
		return []RoleTemplate{
			{
				Key:  "customer_admin",
				Name: "Customer Administrator",
				Permissions: []string{
					"rfq-view", "rfq-create", "rfq-edit", "rfq-delete",
					"quote-view", "quote-accept", "order-view", "order-create",
					"invoice-view", "invoice-pay", "user-view", "user-manage",
					"role-view", "role-manage", "report-view", "settings-manage",
				},
			},
			{
				Key:  "customer_manager",
				Name: "Customer Manager",
				Permissions: []string{
					"rfq-view", "rfq-create", "rfq-edit",
					"quote-view", "quote-accept", "order-view", "order-create",
					"user-view", "report-view",
				},
			},
			{
				Key:  "customer_accountant",
				Name: "Customer Accountant",
				Permissions: []string{
					"order-view", "invoice-view", "invoice-pay", "report-view",
				},
			},
			{
				Key:  "customer_viewer",
				Name: "Customer Viewer",
				Permissions: []string{
					"rfq-view", "quote-view", "order-view",
					"invoice-view", "report-view",
				},
			},
		}
	case orgType == entities.OrgTypeVendor && portal == entities.PortalVendor:
		return []RoleTemplate{
			{
				Key:  "vendor_admin",
				Name: "Vendor Administrator",
				Permissions: []string{
					"rfq-view", "quote-view", "quote-create", "quote-edit",
					"order-view", "order-fulfill", "shipment-view", "shipment-create",
					"invoice-view", "invoice-create", "catalog-view", "catalog-manage",
					"user-view", "user-manage", "role-view", "role-manage",
					"report-view", "settings-manage",
				},
			},
			{
				Key:  "vendor_manager",
				Name: "Vendor Manager",
				Permissions: []string{
					"rfq-view", "quote-view", "quote-create", "quote-edit",
					"order-view", "order-fulfill", "shipment-view", "shipment-create",
					"catalog-view", "user-view", "report-view",
				},
			},
			{
				Key:  "vendor_accountant",
				Name: "Vendor Accountant",
				Permissions: []string{
					"order-view", "invoice-view", "invoice-create", "report-view",
				},
			},
			{
				Key:  "vendor_viewer",
				Name: "Vendor Viewer",
				Permissions: []string{
					"rfq-view", "quote-view", "order-view",
					"shipment-view", "invoice-view", "catalog-view", "report-view",
				},
			},
		}
	default:
		return nil
	}
}
