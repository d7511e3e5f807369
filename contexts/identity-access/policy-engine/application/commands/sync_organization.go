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

// SyncOrganizationScopeCommand establishes a new tenant's isolation scope.
type SyncOrganizationScopeCommand struct {
	Organization entities.Organization
}

// SyncOrganizationScopeUseCase writes the identity scope row for an
// organization and drives the default-role bootstrap. Ensure semantics: an
// organization that already carries its scope row gets no duplicate.
type SyncOrganizationScopeUseCase struct {
	Engine    *engine.Engine
	Directory ports.Directory
	Bootstrap BootstrapDefaultRolesUseCase
	Logger    *slog.Logger
}

func (u SyncOrganizationScopeUseCase) Execute(ctx context.Context, cmd SyncOrganizationScopeCommand) error {
	organization := cmd.Organization
	if strings.TrimSpace(organization.ID) == "" {
		return domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(string(organization.Portal)) == "" {
		return domainerrors.ErrInvalidPortal
	}

	logger := application.ResolveLogger(u.Logger)

	if err := u.Directory.SaveOrganization(ctx, organization); err != nil {
		return err
	}

	if !u.Engine.HasScope(organization.ID) {
		delta := entities.Delta{Add: []entities.Relation{entities.NewOrgScopeRelation(organization.ID)}}
		if err := u.Engine.Apply(ctx, delta); err != nil {
			return err
		}
	}

	_, err := u.Bootstrap.Execute(ctx, BootstrapDefaultRolesCommand{
		OrganizationID: organization.ID,
		Type:           organization.Type,
		Portal:         organization.Portal,
	})
	if err != nil {
		// The scope row is in place; the business mutation already succeeded
		// upstream. Surface the bootstrap failure to the caller.
		logger.Error("default role bootstrap failed",
			"event", "authz_org_bootstrap_failed",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"organization_id", organization.ID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("organization scope synchronized",
		"event", "authz_org_scope_synced",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"organization_id", organization.ID,
		"organization_type", string(organization.Type),
		"portal", string(organization.Portal),
	)
	return nil
}

// RemoveOrganizationScopeCommand tears down a tenant entirely.
type RemoveOrganizationScopeCommand struct {
	OrganizationID string
}

// RemoveOrganizationScopeUseCase cascades in dependency order: assignment
// and permission grants, hierarchy edges for the organization's roles, the
// scope row, then role records, user records, and the organization record.
type RemoveOrganizationScopeUseCase struct {
	Engine    *engine.Engine
	Directory ports.Directory
	Logger    *slog.Logger
}

func (u RemoveOrganizationScopeUseCase) Execute(ctx context.Context, cmd RemoveOrganizationScopeCommand) error {
	if strings.TrimSpace(cmd.OrganizationID) == "" {
		return domainerrors.ErrInvalidOrganizationID
	}

	logger := application.ResolveLogger(u.Logger)

	roles, err := u.Directory.ListRolesByOrganization(ctx, cmd.OrganizationID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrOrganizationNotFound) {
			roles = nil
		} else {
			return err
		}
	}

	delta := entities.Delta{
		Remove: u.Engine.RelationsForOrganization(cmd.OrganizationID),
	}
	for _, role := range roles {
		delta.Remove = append(delta.Remove, u.Engine.HierarchyRelations(role.Key, role.Portal)...)
	}
	if err := u.Engine.Apply(ctx, delta); err != nil {
		return err
	}

	for _, role := range roles {
		if err := u.Directory.DeleteRole(ctx, cmd.OrganizationID, role.Key); err != nil {
			return err
		}
	}
	if err := u.Directory.DeleteUsersByOrganization(ctx, cmd.OrganizationID); err != nil {
		return err
	}
	if err := u.Directory.DeleteOrganization(ctx, cmd.OrganizationID); err != nil && !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		return err
	}

	logger.Info("organization scope removed",
		"event", "authz_org_scope_removed",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"organization_id", cmd.OrganizationID,
		"roles", len(roles),
		"removed_relations", len(delta.Remove),
	)
	return nil
}
