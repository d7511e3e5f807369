package commands

import (
	"context"
	"log/slog"
	"strings"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/catalog"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/services"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// SyncRoleGrantsCommand materializes a role's grant rows after create/update.
type SyncRoleGrantsCommand struct {
	Role entities.Role
}

// SyncRoleGrantsResult reports the applied grant delta.
type SyncRoleGrantsResult struct {
	Added   int      `json:"added"`
	Removed int      `json:"removed"`
	Skipped []string `json:"skipped,omitempty"`
}

// SyncRoleGrantsUseCase replaces a role's permission rows with the image of
// its permission list under the catalog mapping. The replacement is computed
// as a true diff and applied as one batch, so repeated synchronization of an
// unchanged role writes nothing.
type SyncRoleGrantsUseCase struct {
	Engine    *engine.Engine
	Directory ports.Directory
	Catalog   *catalog.Catalog
	Logger    *slog.Logger
}

// Execute validates the role, computes the grant delta, and applies it
// write-through. Permission codes with no catalog mapping are skipped with a
// warning, never an error.
func (u SyncRoleGrantsUseCase) Execute(ctx context.Context, cmd SyncRoleGrantsCommand) (SyncRoleGrantsResult, error) {
	role := cmd.Role
	if strings.TrimSpace(role.Key) == "" {
		return SyncRoleGrantsResult{}, domainerrors.ErrInvalidRoleKey
	}
	if strings.TrimSpace(role.OrganizationID) == "" {
		return SyncRoleGrantsResult{}, domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(string(role.Portal)) == "" {
		return SyncRoleGrantsResult{}, domainerrors.ErrInvalidPortal
	}

	logger := application.ResolveLogger(u.Logger)

	expected, unmapped := u.Catalog.PermissionRelations(role)
	for _, code := range unmapped {
		logger.Warn("permission code has no catalog mapping, skipped",
			"event", "authz_permission_unmapped",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"role_key", role.Key,
			"organization_id", role.OrganizationID,
			"portal", string(role.Portal),
			"code", code,
		)
	}
	expected = append(expected, entities.NewHierarchySelfEdge(role.Key, role.Portal))

	actual := u.Engine.PermissionRelations(role.Key, role.OrganizationID)
	if selfEdge := entities.NewHierarchySelfEdge(role.Key, role.Portal); containsRelation(u.Engine.HierarchyRelations(role.Key, role.Portal), selfEdge) {
		actual = append(actual, selfEdge)
	}

	delta := services.DiffRelations(expected, actual)
	if err := u.Engine.Apply(ctx, delta); err != nil {
		logger.Error("role grant sync failed",
			"event", "authz_role_sync_failed",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"role_key", role.Key,
			"organization_id", role.OrganizationID,
			"error", err.Error(),
		)
		return SyncRoleGrantsResult{}, err
	}

	if u.Directory != nil {
		if err := u.Directory.SaveRole(ctx, role); err != nil {
			return SyncRoleGrantsResult{}, err
		}
	}

	logger.Info("role grants synchronized",
		"event", "authz_role_synced",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"role_key", role.Key,
		"organization_id", role.OrganizationID,
		"portal", string(role.Portal),
		"added", len(delta.Add),
		"removed", len(delta.Remove),
		"skipped", len(unmapped),
	)
	return SyncRoleGrantsResult{
		Added:   len(delta.Add),
		Removed: len(delta.Remove),
		Skipped: unmapped,
	}, nil
}

func containsRelation(relations []entities.Relation, target entities.Relation) bool {
	targetKey := services.RelationKey(target)
	for _, relation := range relations {
		if services.RelationKey(relation) == targetKey {
			return true
		}
	}
	return false
}
