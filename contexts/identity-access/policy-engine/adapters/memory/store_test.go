package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
)

func TestAddIsIdempotentPerTuple(t *testing.T) {
	store := NewStore()
	relation := entities.NewUserRoleRelation("user_1", "customer_admin", "org-acme")

	for i := 0; i < 3; i++ {
		if err := store.Add(context.Background(), relation); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	relations, err := store.Query(context.Background(), entities.RelationUserRole, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(relations) != 1 {
		t.Fatalf("expected one stored tuple, got %d", len(relations))
	}
}

func TestQueryPositionalFilterTreatsBlankAsWildcard(t *testing.T) {
	store := NewStore()
	seed := []entities.Relation{
		entities.NewUserRoleRelation("user_1", "customer_admin", "org-acme"),
		entities.NewUserRoleRelation("user_1", "vendor_admin", "org-supplies"),
		entities.NewUserRoleRelation("user_2", "customer_viewer", "org-acme"),
	}
	if err := store.Apply(context.Background(), entities.Delta{Add: seed}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	matched, err := store.Query(context.Background(), entities.RelationUserRole, []string{"user_1", "", "org-acme"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matched) != 1 || matched[0].Fields[1] != "customer_admin" {
		t.Fatalf("unexpected filtered result: %v", matched)
	}

	all, err := store.Query(context.Background(), entities.RelationUserRole, []string{"", "", "org-acme"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two org-acme tuples, got %d", len(all))
	}
}

func TestApplyRemovesBeforeAdding(t *testing.T) {
	store := NewStore()
	old := entities.NewUserRoleRelation("user_1", "customer_viewer", "org-acme")
	if err := store.Add(context.Background(), old); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err := store.Apply(context.Background(), entities.Delta{
		Remove: []entities.Relation{old},
		Add:    []entities.Relation{entities.NewUserRoleRelation("user_1", "customer_admin", "org-acme")},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	relations, err := store.Query(context.Background(), entities.RelationUserRole, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(relations) != 1 || relations[0].Fields[1] != "customer_admin" {
		t.Fatalf("unexpected tuples after replace: %v", relations)
	}
}

func TestScanPermissionRowsReportsSchemaVersions(t *testing.T) {
	store := NewStore()
	store.SeedLegacyPermissionRow([]string{"customer_admin", "rfq-resource", "view", "org-acme", entities.EffectAllow, string(entities.PortalCustomer)})
	if err := store.Add(context.Background(), entities.NewPermissionRelation("customer_admin", "rfq-resource", "create", "org-acme", entities.PortalCustomer)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	rows, err := store.ScanPermissionRows(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two permission rows, got %d", len(rows))
	}

	versions := map[int]int{}
	for _, row := range rows {
		versions[row.SchemaVersion]++
	}
	if versions[entities.PermissionSchemaLegacy] != 1 || versions[entities.PermissionSchemaCurrent] != 1 {
		t.Fatalf("unexpected version distribution: %v", versions)
	}
}

func TestDirectoryRoleRoundTrip(t *testing.T) {
	store := NewStore()
	role := entities.Role{
		ID:             "role-1",
		Key:            "customer_admin",
		Name:           "Customer Administrator",
		Portal:         entities.PortalCustomer,
		OrganizationID: "org-acme",
		Permissions:    []string{"rfq-view"},
		IsSystem:       true,
	}
	if err := store.SaveRole(context.Background(), role); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.GetRole(context.Background(), "org-acme", "customer_admin")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.ID != role.ID || !loaded.IsSystem {
		t.Fatalf("unexpected role: %+v", loaded)
	}

	// Same key in another organization is a distinct record.
	if _, err := store.GetRole(context.Background(), "org-other", "customer_admin"); !errors.Is(err, domainerrors.ErrRoleNotFound) {
		t.Fatalf("expected role-not-found in other organization, got %v", err)
	}

	if err := store.DeleteRole(context.Background(), "org-acme", "customer_admin"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetRole(context.Background(), "org-acme", "customer_admin"); !errors.Is(err, domainerrors.ErrRoleNotFound) {
		t.Fatalf("expected role-not-found after delete, got %v", err)
	}
}

func TestDeleteUsersByOrganizationScopesTheSweep(t *testing.T) {
	store := NewStore()
	for _, user := range []entities.User{
		{ID: "user_1", OrganizationID: "org-acme"},
		{ID: "user_2", OrganizationID: "org-acme"},
		{ID: "user_3", OrganizationID: "org-other"},
	} {
		if err := store.SaveUser(context.Background(), user); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	if err := store.DeleteUsersByOrganization(context.Background(), "org-acme"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	remaining, err := store.ListUsersByOrganization(context.Background(), "org-other")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "user_3" {
		t.Fatalf("expected only user_3 to remain, got %v", remaining)
	}
	gone, err := store.ListUsersByOrganization(context.Background(), "org-acme")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("expected org-acme users gone, got %v", gone)
	}
}
