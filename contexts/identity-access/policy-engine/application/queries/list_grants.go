package queries

import (
	"context"
	"strings"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
)

// ListUserGrantsQuery inspects the cached assignments for (user, org).
type ListUserGrantsQuery struct {
	UserID         string
	OrganizationID string
}

// ListUserGrantsUseCase returns the role keys currently assigned to a user
// within one organization, from the cache.
type ListUserGrantsUseCase struct {
	Engine *engine.Engine
}

func (u ListUserGrantsUseCase) Execute(_ context.Context, query ListUserGrantsQuery) ([]string, error) {
	if strings.TrimSpace(query.UserID) == "" {
		return nil, domainerrors.ErrInvalidUserID
	}
	if strings.TrimSpace(query.OrganizationID) == "" {
		return nil, domainerrors.ErrInvalidOrganizationID
	}
	return u.Engine.UserRoleKeys(query.UserID, query.OrganizationID), nil
}

// ListRoleGrantsQuery inspects the cached permission rows for a role.
type ListRoleGrantsQuery struct {
	RoleKey        string
	OrganizationID string
}

// ListRoleGrantsUseCase returns the materialized permission tuples for a
// role within one organization, from the cache.
type ListRoleGrantsUseCase struct {
	Engine *engine.Engine
}

func (u ListRoleGrantsUseCase) Execute(_ context.Context, query ListRoleGrantsQuery) ([]entities.Relation, error) {
	if strings.TrimSpace(query.RoleKey) == "" {
		return nil, domainerrors.ErrInvalidRoleKey
	}
	if strings.TrimSpace(query.OrganizationID) == "" {
		return nil, domainerrors.ErrInvalidOrganizationID
	}
	return u.Engine.PermissionRelations(query.RoleKey, query.OrganizationID), nil
}
