package entities

// RelationKind discriminates the tuple families held by the grant store.
type RelationKind string

const (
	// RelationUserRole is (userID, roleKey, organizationID), the current
	// role assignment. At most one live tuple per (user, organization).
	RelationUserRole RelationKind = "user_role"
	// RelationOrgScope is (orgA, orgB, domain) with orgA == orgB always:
	// the tenant isolation marker, exactly one per active organization.
	RelationOrgScope RelationKind = "org_scope"
	// RelationRoleHierarchy is (child, parent, portal), a portal-scoped
	// inheritance edge; every role carries at minimum a self-edge.
	RelationRoleHierarchy RelationKind = "role_hierarchy"
	// RelationPermission is the 7-field allow rule
	// (subject, resource, action, organizationID, effect, portal, roleKey).
	RelationPermission RelationKind = "permission"
)

const (
	// EffectAllow is the only effect the engine honors; anything else denies.
	EffectAllow = "allow"

	// ScopeAllDomains marks the org_scope domain column.
	ScopeAllDomains = "*"
)

// Permission tuple schema versions. Version 1 rows carry six fields (no
// trailing role discriminator) and are rewritten by the legacy migration.
const (
	PermissionSchemaLegacy  = 1
	PermissionSchemaCurrent = 2
)

// Legacy and current field counts for permission tuples.
const (
	permissionLegacyArity  = 6
	permissionCurrentArity = 7
)

// Relation is one stored tuple of a given kind.
type Relation struct {
	Kind   RelationKind `json:"kind"`
	Fields []string     `json:"fields"`
}

// StoredRelation is a relation together with its persisted schema version,
// surfaced only on migration/audit scans.
type StoredRelation struct {
	Relation
	SchemaVersion int `json:"schema_version"`
}

// Delta is a batch of relation mutations applied as one logical step.
type Delta struct {
	Add    []Relation `json:"add"`
	Remove []Relation `json:"remove"`
}

// IsEmpty reports whether applying the delta would be a no-op.
func (d Delta) IsEmpty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// NewUserRoleRelation builds the (user, roleKey, org) assignment tuple.
func NewUserRoleRelation(userID, roleKey, organizationID string) Relation {
	return Relation{
		Kind:   RelationUserRole,
		Fields: []string{userID, roleKey, organizationID},
	}
}

// NewOrgScopeRelation builds the identity scope tuple for an organization.
func NewOrgScopeRelation(organizationID string) Relation {
	return Relation{
		Kind:   RelationOrgScope,
		Fields: []string{organizationID, organizationID, ScopeAllDomains},
	}
}

// NewHierarchySelfEdge builds the mandatory self-inheritance edge for a role.
func NewHierarchySelfEdge(roleKey string, portal Portal) Relation {
	return Relation{
		Kind:   RelationRoleHierarchy,
		Fields: []string{roleKey, roleKey, string(portal)},
	}
}

// NewHierarchyEdge builds a portal-scoped inheritance edge child → parent.
func NewHierarchyEdge(childKey, parentKey string, portal Portal) Relation {
	return Relation{
		Kind:   RelationRoleHierarchy,
		Fields: []string{childKey, parentKey, string(portal)},
	}
}

// NewPermissionRelation builds a current-schema 7-field allow rule. The
// trailing field repeats the role key as the row discriminator.
func NewPermissionRelation(roleKey, resource, action, organizationID string, portal Portal) Relation {
	return Relation{
		Kind:   RelationPermission,
		Fields: []string{roleKey, resource, action, organizationID, EffectAllow, string(portal), roleKey},
	}
}

// IsLegacyPermission reports whether a permission tuple still has the
// six-field shape that predates the role discriminator.
func (r Relation) IsLegacyPermission() bool {
	return r.Kind == RelationPermission && len(r.Fields) == permissionLegacyArity
}

// NormalizePermission rewrites a legacy six-field permission tuple to the
// current seven-field shape, using its own subject as the role value.
// Current-shape tuples are returned unchanged.
func (r Relation) NormalizePermission() Relation {
	if !r.IsLegacyPermission() {
		return r
	}
	fields := make([]string, 0, permissionCurrentArity)
	fields = append(fields, r.Fields...)
	fields = append(fields, r.Fields[0])
	return Relation{Kind: RelationPermission, Fields: fields}
}
