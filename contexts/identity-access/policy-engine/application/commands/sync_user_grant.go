package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// SyncUserGrantCommand assigns a role to a user within an organization.
type SyncUserGrantCommand struct {
	UserID         string
	RoleKey        string
	OrganizationID string
}

// SyncUserGrantUseCase implements ensure semantics: if the user already holds
// exactly the requested role in the organization this is a no-op; otherwise
// every stale assignment for (user, org) is removed and the new one added in
// one batch. Safe to reprocess during bulk import.
type SyncUserGrantUseCase struct {
	Engine    *engine.Engine
	Directory ports.Directory
	Logger    *slog.Logger
}

func (u SyncUserGrantUseCase) Execute(ctx context.Context, cmd SyncUserGrantCommand) error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return domainerrors.ErrInvalidUserID
	}
	if strings.TrimSpace(cmd.RoleKey) == "" {
		return domainerrors.ErrInvalidRoleKey
	}
	if strings.TrimSpace(cmd.OrganizationID) == "" {
		return domainerrors.ErrInvalidOrganizationID
	}

	logger := application.ResolveLogger(u.Logger)

	role, err := u.Directory.GetRole(ctx, cmd.OrganizationID, cmd.RoleKey)
	if err != nil {
		return fmt.Errorf("resolve role %q in organization %q: %w", cmd.RoleKey, cmd.OrganizationID, err)
	}

	existing := u.Engine.UserRoleKeys(cmd.UserID, cmd.OrganizationID)
	if len(existing) == 1 && existing[0] == cmd.RoleKey {
		logger.Debug("user grant already current",
			"event", "authz_user_grant_noop",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"user_id", cmd.UserID,
			"role_key", cmd.RoleKey,
			"organization_id", cmd.OrganizationID,
		)
		return nil
	}

	delta := entities.Delta{
		Remove: u.Engine.UserRoleRelations(cmd.UserID, cmd.OrganizationID),
		Add:    []entities.Relation{entities.NewUserRoleRelation(cmd.UserID, cmd.RoleKey, cmd.OrganizationID)},
	}
	if err := u.Engine.Apply(ctx, delta); err != nil {
		logger.Error("user grant sync failed",
			"event", "authz_user_grant_failed",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"user_id", cmd.UserID,
			"role_key", cmd.RoleKey,
			"organization_id", cmd.OrganizationID,
			"error", err.Error(),
		)
		return err
	}

	if err := u.Directory.SaveUser(ctx, entities.User{
		ID:             cmd.UserID,
		OrganizationID: cmd.OrganizationID,
		Portal:         role.Portal,
		RoleKey:        role.Key,
		RoleID:         role.ID,
	}); err != nil {
		return err
	}

	logger.Info("user grant synchronized",
		"event", "authz_user_grant_synced",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"user_id", cmd.UserID,
		"role_key", cmd.RoleKey,
		"organization_id", cmd.OrganizationID,
		"replaced", len(delta.Remove),
	)
	return nil
}

// RemoveUserGrantCommand removes every assignment for (user, organization).
type RemoveUserGrantCommand struct {
	UserID         string
	OrganizationID string
}

// RemoveUserGrantUseCase serves both explicit role removal and user deletion.
type RemoveUserGrantUseCase struct {
	Engine *engine.Engine
	Logger *slog.Logger
}

func (u RemoveUserGrantUseCase) Execute(ctx context.Context, cmd RemoveUserGrantCommand) error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return domainerrors.ErrInvalidUserID
	}
	if strings.TrimSpace(cmd.OrganizationID) == "" {
		return domainerrors.ErrInvalidOrganizationID
	}

	delta := entities.Delta{
		Remove: u.Engine.UserRoleRelations(cmd.UserID, cmd.OrganizationID),
	}
	if delta.IsEmpty() {
		return nil
	}
	if err := u.Engine.Apply(ctx, delta); err != nil {
		return err
	}

	application.ResolveLogger(u.Logger).Info("user grant removed",
		"event", "authz_user_grant_removed",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"user_id", cmd.UserID,
		"organization_id", cmd.OrganizationID,
		"removed", len(delta.Remove),
	)
	return nil
}
