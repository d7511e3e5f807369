package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/catalog"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// BootstrapDefaultRolesCommand seeds the archetype roles for a new tenant.
type BootstrapDefaultRolesCommand struct {
	OrganizationID string
	Type           entities.OrganizationType
	Portal         entities.Portal
}

// BootstrapDefaultRolesResult lists the role keys created by the bootstrap.
type BootstrapDefaultRolesResult struct {
	Created []string `json:"created"`
}

// BootstrapDefaultRolesUseCase creates the default roles for an organization
// type/portal by driving the role grant synchronizer once per template.
// Invoked once per organization at creation; existing keys are skipped so the
// bootstrap never collides with roles already present in the organization.
type BootstrapDefaultRolesUseCase struct {
	SyncRoleGrants SyncRoleGrantsUseCase
	Directory      ports.Directory
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

func (u BootstrapDefaultRolesUseCase) Execute(ctx context.Context, cmd BootstrapDefaultRolesCommand) (BootstrapDefaultRolesResult, error) {
	if strings.TrimSpace(cmd.OrganizationID) == "" {
		return BootstrapDefaultRolesResult{}, domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(string(cmd.Portal)) == "" {
		return BootstrapDefaultRolesResult{}, domainerrors.ErrInvalidPortal
	}

	logger := application.ResolveLogger(u.Logger)
	templates := catalog.DefaultRoles(cmd.Type, cmd.Portal)
	if len(templates) == 0 {
		logger.Warn("no default role templates for organization type",
			"event", "authz_bootstrap_no_templates",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"organization_id", cmd.OrganizationID,
			"organization_type", string(cmd.Type),
			"portal", string(cmd.Portal),
		)
		return BootstrapDefaultRolesResult{}, nil
	}

	var created []string
	for _, template := range templates {
		_, err := u.Directory.GetRole(ctx, cmd.OrganizationID, template.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, domainerrors.ErrRoleNotFound) {
			return BootstrapDefaultRolesResult{Created: created}, err
		}

		roleID, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return BootstrapDefaultRolesResult{Created: created}, err
		}
		role := entities.Role{
			ID:             roleID,
			Key:            template.Key,
			Name:           template.Name,
			Portal:         cmd.Portal,
			OrganizationID: cmd.OrganizationID,
			Permissions:    template.Permissions,
			IsSystem:       true,
		}
		if _, err := u.SyncRoleGrants.Execute(ctx, SyncRoleGrantsCommand{Role: role}); err != nil {
			return BootstrapDefaultRolesResult{Created: created}, err
		}
		created = append(created, role.Key)
	}

	logger.Info("default roles bootstrapped",
		"event", "authz_bootstrap_completed",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"organization_id", cmd.OrganizationID,
		"organization_type", string(cmd.Type),
		"portal", string(cmd.Portal),
		"created", len(created),
	)
	return BootstrapDefaultRolesResult{Created: created}, nil
}
