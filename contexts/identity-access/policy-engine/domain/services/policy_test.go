package services

import (
	"reflect"
	"testing"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
)

func TestExpandRolesIncludesStartAndTransitiveParents(t *testing.T) {
	edges := map[string][]string{
		"viewer":  {"manager"},
		"manager": {"admin"},
	}

	closure := ExpandRoles(edges, "viewer")
	want := []string{"admin", "manager", "viewer"}
	if !reflect.DeepEqual(closure, want) {
		t.Fatalf("expected closure %v, got %v", want, closure)
	}
}

func TestExpandRolesHandlesCycles(t *testing.T) {
	edges := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}

	closure := ExpandRoles(edges, "a")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(closure, want) {
		t.Fatalf("expected closure %v, got %v", want, closure)
	}
}

func TestExpandRolesIgnoresEmptyAndDuplicateStarts(t *testing.T) {
	closure := ExpandRoles(nil, "", "viewer", "viewer")
	want := []string{"viewer"}
	if !reflect.DeepEqual(closure, want) {
		t.Fatalf("expected closure %v, got %v", want, closure)
	}
}

func TestDiffRelationsComputesMinimalDelta(t *testing.T) {
	kept := entities.NewPermissionRelation("customer_admin", "rfq-resource", "view", "org-acme", entities.PortalCustomer)
	added := entities.NewPermissionRelation("customer_admin", "rfq-resource", "create", "org-acme", entities.PortalCustomer)
	removed := entities.NewPermissionRelation("customer_admin", "order-resource", "view", "org-acme", entities.PortalCustomer)

	delta := DiffRelations(
		[]entities.Relation{kept, added},
		[]entities.Relation{kept, removed},
	)
	if len(delta.Add) != 1 || RelationKey(delta.Add[0]) != RelationKey(added) {
		t.Fatalf("unexpected additions: %v", delta.Add)
	}
	if len(delta.Remove) != 1 || RelationKey(delta.Remove[0]) != RelationKey(removed) {
		t.Fatalf("unexpected removals: %v", delta.Remove)
	}
}

func TestDiffRelationsIsEmptyForEqualSets(t *testing.T) {
	relations := []entities.Relation{
		entities.NewUserRoleRelation("user_1", "customer_admin", "org-acme"),
		entities.NewHierarchySelfEdge("customer_admin", entities.PortalCustomer),
	}

	delta := DiffRelations(relations, relations)
	if !delta.IsEmpty() {
		t.Fatalf("expected empty delta for identical sets, got %+v", delta)
	}
}
