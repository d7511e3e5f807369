package gormstore

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
)

type roleModel struct {
	RoleID         string `gorm:"column:role_id;primaryKey"`
	OrganizationID string `gorm:"column:organization_id;uniqueIndex:ux_roles_org_key"`
	Key            string `gorm:"column:key;uniqueIndex:ux_roles_org_key"`
	Name           string `gorm:"column:name"`
	Portal         string `gorm:"column:portal"`
	Permissions    string `gorm:"column:permissions"`
	IsSystem       bool   `gorm:"column:is_system"`
}

func (roleModel) TableName() string {
	return "authz_roles"
}

type organizationModel struct {
	OrganizationID string `gorm:"column:organization_id;primaryKey"`
	Type           string `gorm:"column:type"`
	Portal         string `gorm:"column:portal"`
	IsActive       bool   `gorm:"column:is_active"`
}

func (organizationModel) TableName() string {
	return "authz_organizations"
}

type userModel struct {
	UserID         string `gorm:"column:user_id;primaryKey"`
	OrganizationID string `gorm:"column:organization_id;index:idx_authz_users_org"`
	Portal         string `gorm:"column:portal"`
	RoleKey        string `gorm:"column:role_key"`
	RoleID         string `gorm:"column:role_id"`
}

func (userModel) TableName() string {
	return "authz_users"
}

func (s *Store) SaveRole(ctx context.Context, role entities.Role) error {
	row, err := roleModelFromEntity(role)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "key"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (s *Store) GetRole(ctx context.Context, organizationID, key string) (entities.Role, error) {
	var row roleModel
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND key = ?", organizationID, key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Role{}, domainerrors.ErrRoleNotFound
		}
		return entities.Role{}, err
	}
	return row.toEntity()
}

func (s *Store) ListRoles(ctx context.Context) ([]entities.Role, error) {
	var rows []roleModel
	if err := s.db.WithContext(ctx).
		Order("organization_id, key").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rolesFromModels(rows)
}

func (s *Store) ListRolesByOrganization(ctx context.Context, organizationID string) ([]entities.Role, error) {
	var rows []roleModel
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("key").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rolesFromModels(rows)
}

func (s *Store) DeleteRole(ctx context.Context, organizationID, key string) error {
	return s.db.WithContext(ctx).
		Where("organization_id = ? AND key = ?", organizationID, key).
		Delete(&roleModel{}).
		Error
}

func (s *Store) SaveOrganization(ctx context.Context, organization entities.Organization) error {
	row := organizationModel{
		OrganizationID: organization.ID,
		Type:           string(organization.Type),
		Portal:         string(organization.Portal),
		IsActive:       organization.IsActive,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (s *Store) GetOrganization(ctx context.Context, organizationID string) (entities.Organization, error) {
	var row organizationModel
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Organization{}, domainerrors.ErrOrganizationNotFound
		}
		return entities.Organization{}, err
	}
	return row.toEntity(), nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	var rows []organizationModel
	if err := s.db.WithContext(ctx).
		Order("organization_id").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	organizations := make([]entities.Organization, 0, len(rows))
	for _, row := range rows {
		organizations = append(organizations, row.toEntity())
	}
	return organizations, nil
}

func (s *Store) DeleteOrganization(ctx context.Context, organizationID string) error {
	return s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Delete(&organizationModel{}).
		Error
}

func (s *Store) SaveUser(ctx context.Context, user entities.User) error {
	row := userModel{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Portal:         string(user.Portal),
		RoleKey:        user.RoleKey,
		RoleID:         user.RoleID,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (s *Store) ListUsersByOrganization(ctx context.Context, organizationID string) ([]entities.User, error) {
	var rows []userModel
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("user_id").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, entities.User{
			ID:             row.UserID,
			OrganizationID: row.OrganizationID,
			Portal:         entities.Portal(row.Portal),
			RoleKey:        row.RoleKey,
			RoleID:         row.RoleID,
		})
	}
	return users, nil
}

func (s *Store) DeleteUsersByOrganization(ctx context.Context, organizationID string) error {
	return s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Delete(&userModel{}).
		Error
}

func roleModelFromEntity(role entities.Role) (roleModel, error) {
	permissions, err := json.Marshal(role.Permissions)
	if err != nil {
		return roleModel{}, err
	}
	return roleModel{
		RoleID:         role.ID,
		OrganizationID: role.OrganizationID,
		Key:            role.Key,
		Name:           role.Name,
		Portal:         string(role.Portal),
		Permissions:    string(permissions),
		IsSystem:       role.IsSystem,
	}, nil
}

func (m roleModel) toEntity() (entities.Role, error) {
	var permissions []string
	if m.Permissions != "" {
		if err := json.Unmarshal([]byte(m.Permissions), &permissions); err != nil {
			return entities.Role{}, err
		}
	}
	return entities.Role{
		ID:             m.RoleID,
		Key:            m.Key,
		Name:           m.Name,
		Portal:         entities.Portal(m.Portal),
		OrganizationID: m.OrganizationID,
		Permissions:    permissions,
		IsSystem:       m.IsSystem,
	}, nil
}

func (m organizationModel) toEntity() entities.Organization {
	return entities.Organization{
		ID:       m.OrganizationID,
		Type:     entities.OrganizationType(m.Type),
		Portal:   entities.Portal(m.Portal),
		IsActive: m.IsActive,
	}
}

func rolesFromModels(rows []roleModel) ([]entities.Role, error) {
	roles := make([]entities.Role, 0, len(rows))
	for _, row := range rows {
		role, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}
