// Package memory provides an in-memory adapter implementing the grant store
// and directory ports. It is intended for tests and local development wiring.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/services"
)

type roleKey struct {
	organizationID string
	key            string
}

// Store is the in-memory adapter. It also satisfies the Clock and
// IDGenerator ports so a test module needs no further wiring.
type Store struct {
	mu sync.RWMutex

	relations map[entities.RelationKind][]entities.StoredRelation

	roles         map[roleKey]entities.Role
	organizations map[string]entities.Organization
	users         map[string]entities.User
}

// NewStore builds an empty in-memory adapter.
func NewStore() *Store {
	return &Store{
		relations:     make(map[entities.RelationKind][]entities.StoredRelation),
		roles:         make(map[roleKey]entities.Role),
		organizations: make(map[string]entities.Organization),
		users:         make(map[string]entities.User),
	}
}

// SeedLegacyPermissionRow injects a six-field permission tuple stamped with
// the legacy schema version, for migration tests.
func (s *Store) SeedLegacyPermissionRow(fields []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[entities.RelationPermission] = append(s.relations[entities.RelationPermission], entities.StoredRelation{
		Relation:      entities.Relation{Kind: entities.RelationPermission, Fields: fields},
		SchemaVersion: entities.PermissionSchemaLegacy,
	})
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Add(_ context.Context, relation entities.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(relation)
	return nil
}

func (s *Store) Remove(_ context.Context, relation entities.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(relation)
	return nil
}

func (s *Store) RemoveFiltered(_ context.Context, kind entities.RelationKind, fieldIndex int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.relations[kind][:0]
	for _, stored := range s.relations[kind] {
		if fieldIndex >= 0 && fieldIndex < len(stored.Fields) && stored.Fields[fieldIndex] == value {
			continue
		}
		kept = append(kept, stored)
	}
	s.relations[kind] = kept
	return nil
}

func (s *Store) Query(_ context.Context, kind entities.RelationKind, filter []string) ([]entities.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.Relation
	for _, stored := range s.relations[kind] {
		if matchesFilter(stored.Fields, filter) {
			matched = append(matched, stored.Relation)
		}
	}
	return matched, nil
}

func (s *Store) Apply(_ context.Context, delta entities.Delta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, relation := range delta.Remove {
		s.remove(relation)
	}
	for _, relation := range delta.Add {
		s.add(relation)
	}
	return nil
}

func (s *Store) ScanPermissionRows(_ context.Context) ([]entities.StoredRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]entities.StoredRelation, len(s.relations[entities.RelationPermission]))
	copy(rows, s.relations[entities.RelationPermission])
	return rows, nil
}

func (s *Store) add(relation entities.Relation) {
	key := services.RelationKey(relation)
	for _, stored := range s.relations[relation.Kind] {
		if services.RelationKey(stored.Relation) == key {
			return
		}
	}
	version := 0
	if relation.Kind == entities.RelationPermission {
		version = entities.PermissionSchemaCurrent
	}
	s.relations[relation.Kind] = append(s.relations[relation.Kind], entities.StoredRelation{
		Relation:      relation,
		SchemaVersion: version,
	})
}

func (s *Store) remove(relation entities.Relation) {
	key := services.RelationKey(relation)
	kept := s.relations[relation.Kind][:0]
	for _, stored := range s.relations[relation.Kind] {
		if services.RelationKey(stored.Relation) == key {
			continue
		}
		kept = append(kept, stored)
	}
	s.relations[relation.Kind] = kept
}

func matchesFilter(fields, filter []string) bool {
	if len(filter) > len(fields) {
		return false
	}
	for index, want := range filter {
		if want == "" {
			continue
		}
		if fields[index] != want {
			return false
		}
	}
	return true
}

func (s *Store) SaveRole(_ context.Context, role entities.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[roleKey{organizationID: role.OrganizationID, key: role.Key}] = role
	return nil
}

func (s *Store) GetRole(_ context.Context, organizationID, key string) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[roleKey{organizationID: organizationID, key: key}]
	if !ok {
		return entities.Role{}, domainerrors.ErrRoleNotFound
	}
	return role, nil
}

func (s *Store) ListRoles(_ context.Context) ([]entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles := make([]entities.Role, 0, len(s.roles))
	for _, role := range s.roles {
		roles = append(roles, role)
	}
	sortRoles(roles)
	return roles, nil
}

func (s *Store) ListRolesByOrganization(_ context.Context, organizationID string) ([]entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var roles []entities.Role
	for key, role := range s.roles {
		if key.organizationID == organizationID {
			roles = append(roles, role)
		}
	}
	sortRoles(roles)
	return roles, nil
}

func (s *Store) DeleteRole(_ context.Context, organizationID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, roleKey{organizationID: organizationID, key: key})
	return nil
}

func (s *Store) SaveOrganization(_ context.Context, organization entities.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[organization.ID] = organization
	return nil
}

func (s *Store) GetOrganization(_ context.Context, organizationID string) (entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	organization, ok := s.organizations[organizationID]
	if !ok {
		return entities.Organization{}, domainerrors.ErrOrganizationNotFound
	}
	return organization, nil
}

func (s *Store) ListOrganizations(_ context.Context) ([]entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	organizations := make([]entities.Organization, 0, len(s.organizations))
	for _, organization := range s.organizations {
		organizations = append(organizations, organization)
	}
	sort.Slice(organizations, func(i, j int) bool { return organizations[i].ID < organizations[j].ID })
	return organizations, nil
}

func (s *Store) DeleteOrganization(_ context.Context, organizationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.organizations, organizationID)
	return nil
}

func (s *Store) SaveUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Store) ListUsersByOrganization(_ context.Context, organizationID string) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []entities.User
	for _, user := range s.users {
		if user.OrganizationID == organizationID {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) DeleteUsersByOrganization(_ context.Context, organizationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, user := range s.users {
		if user.OrganizationID == organizationID {
			delete(s.users, id)
		}
	}
	return nil
}

func sortRoles(roles []entities.Role) {
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].OrganizationID != roles[j].OrganizationID {
			return roles[i].OrganizationID < roles[j].OrganizationID
		}
		return roles[i].Key < roles[j].Key
	})
}
