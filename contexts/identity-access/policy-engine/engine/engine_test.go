package engine

import (
	"context"
	"testing"
	"time"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/adapters/memory"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
)

func TestAuthorizeDeniesWithoutOrganizationScope(t *testing.T) {
	eng := newTestEngine(t, memory.NewStore())

	decision := eng.Authorize("user_1", "rfq-resource", "view", "org-acme", entities.PortalCustomer, time.Now())
	if decision.Allowed {
		t.Fatalf("expected deny for unscoped organization")
	}
	if decision.Reason != entities.ReasonOrgNotScoped {
		t.Fatalf("expected reason %q, got %q", entities.ReasonOrgNotScoped, decision.Reason)
	}
}

func TestAuthorizeDeniesWithoutAssignment(t *testing.T) {
	store := memory.NewStore()
	eng := newTestEngine(t, store)

	mustApply(t, eng, entities.Delta{Add: []entities.Relation{
		entities.NewOrgScopeRelation("org-acme"),
	}})

	decision := eng.Authorize("user_1", "rfq-resource", "view", "org-acme", entities.PortalCustomer, time.Now())
	if decision.Allowed {
		t.Fatalf("expected deny without role assignment")
	}
	if decision.Reason != entities.ReasonNoRoleAssigned {
		t.Fatalf("expected reason %q, got %q", entities.ReasonNoRoleAssigned, decision.Reason)
	}
}

func TestAuthorizeGrantsExactMatch(t *testing.T) {
	eng := newTestEngine(t, memory.NewStore())
	seedCustomerAdmin(t, eng, "org-acme", "user_1")

	decision := eng.Authorize("user_1", "rfq-resource", "view", "org-acme", entities.PortalCustomer, time.Now())
	if !decision.Allowed {
		t.Fatalf("expected allow, got deny with reason %q", decision.Reason)
	}
	if decision.Reason != entities.ReasonPermissionGranted {
		t.Fatalf("expected reason %q, got %q", entities.ReasonPermissionGranted, decision.Reason)
	}
}

func TestAuthorizeDeniesUnmatchedAction(t *testing.T) {
	eng := newTestEngine(t, memory.NewStore())
	seedCustomerAdmin(t, eng, "org-acme", "user_1")

	decision := eng.Authorize("user_1", "rfq-resource", "delete", "org-acme", entities.PortalCustomer, time.Now())
	if decision.Allowed {
		t.Fatalf("expected deny for unmatched action")
	}
	if decision.Reason != entities.ReasonPermissionMissing {
		t.Fatalf("expected reason %q, got %q", entities.ReasonPermissionMissing, decision.Reason)
	}
}

func TestAuthorizeDeniesAcrossOrganizations(t *testing.T) {
	eng := newTestEngine(t, memory.NewStore())
	seedCustomerAdmin(t, eng, "org-acme", "user_1")
	mustApply(t, eng, entities.Delta{Add: []entities.Relation{
		entities.NewOrgScopeRelation("org-other"),
	}})

	decision := eng.Authorize("user_1", "rfq-resource", "view", "org-other", entities.PortalCustomer, time.Now())
	if decision.Allowed {
		t.Fatalf("grant in org-acme must not leak into org-other")
	}
	if decision.Reason != entities.ReasonNoRoleAssigned {
		t.Fatalf("expected reason %q, got %q", entities.ReasonNoRoleAssigned, decision.Reason)
	}
}

func TestAuthorizeFollowsHierarchyClosure(t *testing.T) {
	eng := newTestEngine(t, memory.NewStore())
	mustApply(t, eng, entities.Delta{Add: []entities.Relation{
		entities.NewOrgScopeRelation("org-acme"),
		entities.NewUserRoleRelation("user_1", "customer_viewer", "org-acme"),
		entities.NewHierarchySelfEdge("customer_viewer", entities.PortalCustomer),
		entities.NewHierarchyEdge("customer_viewer", "customer_manager", entities.PortalCustomer),
		entities.NewHierarchyEdge("customer_manager", "customer_admin", entities.PortalCustomer),
		entities.NewPermissionRelation("customer_admin", "rfq-resource", "create", "org-acme", entities.PortalCustomer),
	}})

	decision := eng.Authorize("user_1", "rfq-resource", "create", "org-acme", entities.PortalCustomer, time.Now())
	if !decision.Allowed {
		t.Fatalf("expected grant inherited through two hierarchy hops, got reason %q", decision.Reason)
	}
}

func TestHierarchyIsPortalScoped(t *testing.T) {
	eng := newTestEngine(t, memory.NewStore())
	mustApply(t, eng, entities.Delta{Add: []entities.Relation{
		entities.NewOrgScopeRelation("org-acme"),
		entities.NewUserRoleRelation("user_1", "viewer", "org-acme"),
		// Edge lives on the vendor portal; the customer evaluation must not see it.
		entities.NewHierarchyEdge("viewer", "admin", entities.PortalVendor),
		entities.NewPermissionRelation("admin", "rfq-resource", "view", "org-acme", entities.PortalCustomer),
	}})

	decision := eng.Authorize("user_1", "rfq-resource", "view", "org-acme", entities.PortalCustomer, time.Now())
	if decision.Allowed {
		t.Fatalf("hierarchy edge from another portal must not grant")
	}
}

func TestApplyWritesThroughToStoreAndCache(t *testing.T) {
	store := memory.NewStore()
	eng := newTestEngine(t, store)
	seedCustomerAdmin(t, eng, "org-acme", "user_1")

	// Visible in the cache without a reload.
	if !eng.HasScope("org-acme") {
		t.Fatalf("scope missing from cache after apply")
	}
	keys := eng.UserRoleKeys("user_1", "org-acme")
	if len(keys) != 1 || keys[0] != "customer_admin" {
		t.Fatalf("unexpected cached assignment: %v", keys)
	}

	// And persisted: a fresh engine over the same store sees the same view.
	rebuilt := newTestEngine(t, store)
	decision := rebuilt.Authorize("user_1", "rfq-resource", "view", "org-acme", entities.PortalCustomer, time.Now())
	if !decision.Allowed {
		t.Fatalf("expected grant to survive a cache rebuild, got reason %q", decision.Reason)
	}
}

func TestRemoveFilteredDropsMatchingTuples(t *testing.T) {
	store := memory.NewStore()
	eng := newTestEngine(t, store)
	mustApply(t, eng, entities.Delta{Add: []entities.Relation{
		entities.NewUserRoleRelation("user_1", "customer_admin", "org-acme"),
		entities.NewUserRoleRelation("user_1", "vendor_admin", "org-supplies"),
		entities.NewUserRoleRelation("user_2", "customer_viewer", "org-acme"),
	}})

	if err := eng.RemoveFiltered(context.Background(), entities.RelationUserRole, 0, "user_1"); err != nil {
		t.Fatalf("remove filtered failed: %v", err)
	}

	if got := eng.UserRoleKeys("user_1", "org-acme"); len(got) != 0 {
		t.Fatalf("expected user_1 assignments gone, got %v", got)
	}
	if got := eng.UserRoleKeys("user_1", "org-supplies"); len(got) != 0 {
		t.Fatalf("expected user_1 assignments gone in all organizations, got %v", got)
	}
	if got := eng.UserRoleKeys("user_2", "org-acme"); len(got) != 1 {
		t.Fatalf("expected user_2 assignment untouched, got %v", got)
	}

	remaining, err := store.Query(context.Background(), entities.RelationUserRole, nil)
	if err != nil {
		t.Fatalf("store query failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected one stored assignment, got %d", len(remaining))
	}
}

func TestReloadNormalizesLegacyPermissionRows(t *testing.T) {
	store := memory.NewStore()
	store.SeedLegacyPermissionRow([]string{"customer_admin", "rfq-resource", "view", "org-acme", entities.EffectAllow, string(entities.PortalCustomer)})

	eng := newTestEngine(t, store)
	mustApply(t, eng, entities.Delta{Add: []entities.Relation{
		entities.NewOrgScopeRelation("org-acme"),
		entities.NewUserRoleRelation("user_1", "customer_admin", "org-acme"),
	}})

	decision := eng.Authorize("user_1", "rfq-resource", "view", "org-acme", entities.PortalCustomer, time.Now())
	if !decision.Allowed {
		t.Fatalf("legacy six-field row must evaluate after cache normalization, got reason %q", decision.Reason)
	}
}

func TestRelationsForOrganizationCollectsTenantTuples(t *testing.T) {
	eng := newTestEngine(t, memory.NewStore())
	seedCustomerAdmin(t, eng, "org-acme", "user_1")
	seedCustomerAdmin(t, eng, "org-other", "user_2")

	relations := eng.RelationsForOrganization("org-acme")
	for _, relation := range relations {
		for _, field := range relation.Fields {
			if field == "org-other" {
				t.Fatalf("tenant collection leaked another organization: %v", relation)
			}
		}
	}
	// assignment + permission + scope
	if len(relations) != 3 {
		t.Fatalf("expected 3 tenant tuples, got %d: %v", len(relations), relations)
	}
}

func newTestEngine(t *testing.T, store *memory.Store) *Engine {
	t.Helper()
	eng, err := New(context.Background(), Config{Store: store})
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}
	return eng
}

func mustApply(t *testing.T, eng *Engine, delta entities.Delta) {
	t.Helper()
	if err := eng.Apply(context.Background(), delta); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
}

func seedCustomerAdmin(t *testing.T, eng *Engine, organizationID, userID string) {
	t.Helper()
	mustApply(t, eng, entities.Delta{Add: []entities.Relation{
		entities.NewOrgScopeRelation(organizationID),
		entities.NewUserRoleRelation(userID, "customer_admin", organizationID),
		entities.NewHierarchySelfEdge("customer_admin", entities.PortalCustomer),
		entities.NewPermissionRelation("customer_admin", "rfq-resource", "view", organizationID, entities.PortalCustomer),
	}})
}
