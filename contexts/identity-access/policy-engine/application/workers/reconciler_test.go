package workers_test

import (
	"context"
	"testing"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/adapters/memory"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application/commands"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application/workers"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/catalog"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
)

type reconcilerFixture struct {
	store      *memory.Store
	engine     *engine.Engine
	reconciler workers.Reconciler
}

func newReconcilerFixture(t *testing.T) reconcilerFixture {
	t.Helper()
	store := memory.NewStore()
	eng, err := engine.New(context.Background(), engine.Config{Store: store})
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog load failed: %v", err)
	}

	sync := commands.SyncOrganizationScopeUseCase{
		Engine:    eng,
		Directory: store,
		Bootstrap: commands.BootstrapDefaultRolesUseCase{
			SyncRoleGrants: commands.SyncRoleGrantsUseCase{Engine: eng, Directory: store, Catalog: cat},
			Directory:      store,
			IDGenerator:    store,
		},
	}
	err = sync.Execute(context.Background(), commands.SyncOrganizationScopeCommand{Organization: entities.Organization{
		ID:       "org-acme",
		Type:     entities.OrgTypeCustomer,
		Portal:   entities.PortalCustomer,
		IsActive: true,
	}})
	if err != nil {
		t.Fatalf("tenant setup failed: %v", err)
	}

	return reconcilerFixture{
		store:  store,
		engine: eng,
		reconciler: workers.Reconciler{
			Engine:    eng,
			Directory: store,
			Catalog:   cat,
		},
	}
}

func TestRunOnceIsQuietWhenConsistent(t *testing.T) {
	f := newReconcilerFixture(t)

	if err := f.reconciler.RunOnce(context.Background()); err != nil {
		t.Fatalf("reconciliation failed: %v", err)
	}
	// A consistent tenant keeps its full grant image.
	if rows := f.engine.PermissionRelations("customer_admin", "org-acme"); len(rows) == 0 {
		t.Fatalf("expected customer_admin grants to remain")
	}
}

func TestRunOnceRepairsLostGrantRows(t *testing.T) {
	f := newReconcilerFixture(t)

	lost := entities.NewPermissionRelation("customer_admin", "rfq-resource", "view", "org-acme", entities.PortalCustomer)
	if err := f.engine.Apply(context.Background(), entities.Delta{Remove: []entities.Relation{lost}}); err != nil {
		t.Fatalf("simulated grant loss failed: %v", err)
	}

	if err := f.reconciler.RunOnce(context.Background()); err != nil {
		t.Fatalf("reconciliation failed: %v", err)
	}

	rows := f.engine.PermissionRelations("customer_admin", "org-acme")
	found := false
	for _, row := range rows {
		if row.Fields[1] == "rfq-resource" && row.Fields[2] == "view" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the lost grant row to be restored, cached rows: %v", rows)
	}
}

func TestRunOnceRestoresMissingScopeRow(t *testing.T) {
	f := newReconcilerFixture(t)

	err := f.engine.Apply(context.Background(), entities.Delta{Remove: []entities.Relation{
		entities.NewOrgScopeRelation("org-acme"),
	}})
	if err != nil {
		t.Fatalf("simulated scope loss failed: %v", err)
	}
	if f.engine.HasScope("org-acme") {
		t.Fatalf("sanity check failed, scope still present")
	}

	if err := f.reconciler.RunOnce(context.Background()); err != nil {
		t.Fatalf("reconciliation failed: %v", err)
	}
	if !f.engine.HasScope("org-acme") {
		t.Fatalf("expected scope row restored for active organization")
	}
}

func TestRunOnceLeavesInactiveOrganizationsUnscoped(t *testing.T) {
	f := newReconcilerFixture(t)

	if err := f.store.SaveOrganization(context.Background(), entities.Organization{
		ID:     "org-dormant",
		Type:   entities.OrgTypeCustomer,
		Portal: entities.PortalCustomer,
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := f.reconciler.RunOnce(context.Background()); err != nil {
		t.Fatalf("reconciliation failed: %v", err)
	}
	if f.engine.HasScope("org-dormant") {
		t.Fatalf("inactive organization must not regain a scope row")
	}
}
