package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// SyncRoleDeletionCommand tears down a role's grants and record.
type SyncRoleDeletionCommand struct {
	RoleKey        string
	OrganizationID string
}

// SyncRoleDeletionUseCase removes a role's permission rows, then its
// hierarchy edges, then the role record. System roles are undeletable.
// A missing role is logged and skipped, not an error to the batch.
type SyncRoleDeletionUseCase struct {
	Engine    *engine.Engine
	Directory ports.Directory
	Logger    *slog.Logger
}

func (u SyncRoleDeletionUseCase) Execute(ctx context.Context, cmd SyncRoleDeletionCommand) error {
	if strings.TrimSpace(cmd.RoleKey) == "" {
		return domainerrors.ErrInvalidRoleKey
	}
	if strings.TrimSpace(cmd.OrganizationID) == "" {
		return domainerrors.ErrInvalidOrganizationID
	}

	logger := application.ResolveLogger(u.Logger)

	role, err := u.Directory.GetRole(ctx, cmd.OrganizationID, cmd.RoleKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrRoleNotFound) {
			logger.Warn("role deletion sync skipped, role not found",
				"event", "authz_role_delete_skipped",
				"module", "identity-access/policy-engine",
				"layer", "application",
				"role_key", cmd.RoleKey,
				"organization_id", cmd.OrganizationID,
			)
			return nil
		}
		return err
	}
	if role.IsSystem {
		return domainerrors.ErrSystemRoleImmutable
	}

	delta := entities.Delta{
		Remove: u.Engine.PermissionRelations(role.Key, role.OrganizationID),
	}
	delta.Remove = append(delta.Remove, u.Engine.HierarchyRelations(role.Key, role.Portal)...)
	if err := u.Engine.Apply(ctx, delta); err != nil {
		return err
	}

	if err := u.Directory.DeleteRole(ctx, role.OrganizationID, role.Key); err != nil {
		return err
	}

	logger.Info("role deleted",
		"event", "authz_role_deleted",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"role_key", role.Key,
		"organization_id", role.OrganizationID,
		"removed", len(delta.Remove),
	)
	return nil
}
