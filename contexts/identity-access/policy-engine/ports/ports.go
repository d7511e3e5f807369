package ports

import (
	"context"
	"time"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for bootstrapped role records.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// GrantStore is the persisted relation store. Every mutation is
// write-through; the engine updates its cached view in the same logical step
// so a read immediately following a write reflects that write in-process.
type GrantStore interface {
	// Add persists one tuple. Adding an already-present tuple is a no-op.
	Add(ctx context.Context, relation entities.Relation) error
	// Remove deletes one exact tuple.
	Remove(ctx context.Context, relation entities.Relation) error
	// RemoveFiltered deletes every tuple of kind whose field at fieldIndex
	// equals value.
	RemoveFiltered(ctx context.Context, kind entities.RelationKind, fieldIndex int, value string) error
	// Query returns tuples of kind matching the partial filter: empty filter
	// fields are wildcards, a nil filter matches everything.
	Query(ctx context.Context, kind entities.RelationKind, filter []string) ([]entities.Relation, error)
	// Apply executes a batch of removals and additions as one logical step,
	// transactionally where the backing store supports it.
	Apply(ctx context.Context, delta entities.Delta) error
	// ScanPermissionRows returns every permission tuple with its persisted
	// schema version, for the legacy migration and audit passes.
	ScanPermissionRows(ctx context.Context) ([]entities.StoredRelation, error)
}

// Directory is the record store for Role/User/Organization rows. The CRUD
// layers own the business lifecycle; the synchronizer reads and cascades
// through this boundary.
type Directory interface {
	SaveRole(ctx context.Context, role entities.Role) error
	// GetRole returns ErrRoleNotFound when no role matches (orgID, roleKey).
	GetRole(ctx context.Context, organizationID, roleKey string) (entities.Role, error)
	ListRoles(ctx context.Context) ([]entities.Role, error)
	ListRolesByOrganization(ctx context.Context, organizationID string) ([]entities.Role, error)
	DeleteRole(ctx context.Context, organizationID, roleKey string) error

	SaveOrganization(ctx context.Context, organization entities.Organization) error
	GetOrganization(ctx context.Context, organizationID string) (entities.Organization, error)
	ListOrganizations(ctx context.Context) ([]entities.Organization, error)
	DeleteOrganization(ctx context.Context, organizationID string) error

	SaveUser(ctx context.Context, user entities.User) error
	ListUsersByOrganization(ctx context.Context, organizationID string) ([]entities.User, error)
	DeleteUsersByOrganization(ctx context.Context, organizationID string) error
}
