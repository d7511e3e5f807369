package catalog

import (
	"testing"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
)

func TestLoadResolvesEmbeddedVocabulary(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}

	mapping, ok := cat.Resolve(entities.PortalCustomer, "rfq-view")
	if !ok {
		t.Fatalf("expected rfq-view to resolve on the customer portal")
	}
	if mapping.Resource != "rfq-resource" || mapping.Action != "view" {
		t.Fatalf("unexpected mapping for rfq-view: %+v", mapping)
	}

	for _, portal := range []entities.Portal{entities.PortalAdmin, entities.PortalCustomer, entities.PortalVendor} {
		if cat.Codes(portal) == 0 {
			t.Fatalf("portal %s has no registered codes", portal)
		}
	}
}

func TestParseRejectsDuplicateCodes(t *testing.T) {
	raw := []byte(`
portals:
  customer_portal:
    permissions:
      - code: rfq-view
        resource: rfq-resource
        action: view
      - code: rfq-view
        resource: rfq-resource
        action: list
`)
	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected duplicate code to fail parsing")
	}
}

func TestPermissionRelationsSkipsUnmappedCodes(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}

	role := entities.Role{
		Key:            "customer_admin",
		Portal:         entities.PortalCustomer,
		OrganizationID: "org-acme",
		Permissions:    []string{"rfq-view", "rfq-view", "not-a-real-code"},
	}
	relations, unmapped := cat.PermissionRelations(role)
	if len(relations) != 1 {
		t.Fatalf("expected one relation after deduplication, got %d", len(relations))
	}
	if len(unmapped) != 1 || unmapped[0] != "not-a-real-code" {
		t.Fatalf("expected one unmapped code, got %v", unmapped)
	}

	fields := relations[0].Fields
	if len(fields) != 7 || fields[0] != "customer_admin" || fields[6] != "customer_admin" {
		t.Fatalf("unexpected permission tuple: %v", fields)
	}
}

func TestDefaultRolesMatchCatalogVocabulary(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}

	cases := []struct {
		orgType entities.OrganizationType
		portal  entities.Portal
	}{
		{entities.OrgTypeAdmin, entities.PortalAdmin},
		{entities.OrgTypeCustomer, entities.PortalCustomer},
		{entities.OrgTypeVendor, entities.PortalVendor},
	}
	for _, tc := range cases {
		templates := DefaultRoles(tc.orgType, tc.portal)
		if len(templates) != 4 {
			t.Fatalf("expected 4 archetypes for %s/%s, got %d", tc.orgType, tc.portal, len(templates))
		}
		for _, template := range templates {
			for _, code := range template.Permissions {
				if _, ok := cat.Resolve(tc.portal, code); !ok {
					t.Fatalf("archetype %s references unmapped code %q on portal %s", template.Key, code, tc.portal)
				}
			}
		}
	}
}

func TestDefaultRolesEmptyForMismatchedCombination(t *testing.T) {
	if templates := DefaultRoles(entities.OrgTypeCustomer, entities.PortalVendor); templates != nil {
		t.Fatalf("expected no templates for mismatched type/portal, got %v", templates)
	}
}
