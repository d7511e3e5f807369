package workers

import (
	"context"
	"log/slog"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/catalog"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/services"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// Reconciler audits every role's materialized grant rows against the image
// of its permission list and repairs drift. Sync hooks are best-effort at
// their call sites; this pass is what pulls the relation store back into
// line when a grant write was lost after a business mutation succeeded.
type Reconciler struct {
	Engine    *engine.Engine
	Directory ports.Directory
	Catalog   *catalog.Catalog
	Logger    *slog.Logger
}

// RunOnce performs one full audit pass. Structural mismatches are logged
// with counts as consistency warnings and then repaired; they are not fatal.
func (r Reconciler) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)

	roles, err := r.Directory.ListRoles(ctx)
	if err != nil {
		logger.Error("reconciliation role listing failed",
			"event", "authz_reconcile_list_failed",
			"module", "identity-access/policy-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	var driftedRoles, repairedRelations int
	for _, role := range roles {
		expected, _ := r.Catalog.PermissionRelations(role)
		expected = append(expected, entities.NewHierarchySelfEdge(role.Key, role.Portal))

		actual := r.Engine.PermissionRelations(role.Key, role.OrganizationID)
		for _, edge := range r.Engine.HierarchyRelations(role.Key, role.Portal) {
			if edge.Fields[0] == role.Key && edge.Fields[1] == role.Key {
				actual = append(actual, edge)
			}
		}

		delta := services.DiffRelations(expected, actual)
		if delta.IsEmpty() {
			continue
		}

		driftedRoles++
		logger.Warn("role grant drift detected",
			"event", "authz_reconcile_drift",
			"module", "identity-access/policy-engine",
			"layer", "worker",
			"role_key", role.Key,
			"organization_id", role.OrganizationID,
			"missing", len(delta.Add),
			"extra", len(delta.Remove),
		)
		if err := r.Engine.Apply(ctx, delta); err != nil {
			logger.Error("role grant repair failed",
				"event", "authz_reconcile_repair_failed",
				"module", "identity-access/policy-engine",
				"layer", "worker",
				"role_key", role.Key,
				"organization_id", role.OrganizationID,
				"error", err.Error(),
			)
			return err
		}
		repairedRelations += len(delta.Add) + len(delta.Remove)
	}

	scopesRepaired, err := r.reconcileScopes(ctx, logger)
	if err != nil {
		return err
	}

	logger.Info("reconciliation pass completed",
		"event", "authz_reconcile_completed",
		"module", "identity-access/policy-engine",
		"layer", "worker",
		"roles_audited", len(roles),
		"roles_drifted", driftedRoles,
		"relations_repaired", repairedRelations,
		"scopes_repaired", scopesRepaired,
	)
	return nil
}

// reconcileScopes restores the org_scope identity row for any active
// organization that lost it.
func (r Reconciler) reconcileScopes(ctx context.Context, logger *slog.Logger) (int, error) {
	organizations, err := r.Directory.ListOrganizations(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, organization := range organizations {
		if !organization.IsActive || r.Engine.HasScope(organization.ID) {
			continue
		}
		logger.Warn("organization scope row missing",
			"event", "authz_reconcile_scope_missing",
			"module", "identity-access/policy-engine",
			"layer", "worker",
			"organization_id", organization.ID,
		)
		delta := entities.Delta{Add: []entities.Relation{entities.NewOrgScopeRelation(organization.ID)}}
		if err := r.Engine.Apply(ctx, delta); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}
