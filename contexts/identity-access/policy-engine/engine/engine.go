// Package engine implements the in-memory authorization engine. The engine
// owns the loaded grant set and the store handle: mutations are written
// through to the store and applied to the cache in the same logical step, and
// Authorize never touches the store on the hot path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/services"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

type userOrg struct {
	userID         string
	organizationID string
}

type permissionRow struct {
	subject        string
	resource       string
	action         string
	organizationID string
	effect         string
	portal         string
	roleKey        string
}

// Config carries engine construction dependencies.
type Config struct {
	Store   ports.GrantStore
	Logger  *slog.Logger
	Metrics *Metrics
}

// Engine is the process-wide authorization service. It is constructed once
// at startup; construction fails fatally when the grant set cannot be loaded.
type Engine struct {
	store   ports.GrantStore
	logger  *slog.Logger
	metrics *Metrics

	reloads singleflight.Group

	mu          sync.RWMutex
	assignments map[userOrg][]string
	scopes      map[string]struct{}
	hierarchy   map[string]map[string][]string
	grants      map[string][]permissionRow
}

// New builds the engine and performs the initial cache load. A load failure
// is a configuration error: the caller must not serve decisions.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, domainerrors.NewConfigurationError("engine", errors.New("grant store is required"))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:   cfg.Store,
		logger:  logger,
		metrics: cfg.Metrics,
	}
	if err := e.Reload(ctx); err != nil {
		return nil, domainerrors.NewConfigurationError("grant cache load", err)
	}
	return e, nil
}

// Authorize evaluates one enforcement request against the cache. Fail-closed:
// missing assignment, missing organization scope, or an unmatched grant set
// all deny. No store I/O happens here.
func (e *Engine) Authorize(userID, resource, action, organizationID string, portal entities.Portal, now time.Time) entities.Decision {
	decision := entities.Decision{
		UserID:         userID,
		Resource:       resource,
		Action:         action,
		OrganizationID: organizationID,
		Portal:         portal,
		CheckedAt:      now,
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, scoped := e.scopes[organizationID]; !scoped {
		decision.Reason = entities.ReasonOrgNotScoped
		e.metrics.observeDecision(false, string(portal))
		return decision
	}

	assigned := e.assignments[userOrg{userID: userID, organizationID: organizationID}]
	if len(assigned) == 0 {
		decision.Reason = entities.ReasonNoRoleAssigned
		e.metrics.observeDecision(false, string(portal))
		return decision
	}

	closure := services.ExpandRoles(e.hierarchy[string(portal)], assigned...)
	for _, roleKey := range closure {
		for _, row := range e.grants[roleKey] {
			if row.resource == resource &&
				row.action == action &&
				row.organizationID == organizationID &&
				row.portal == string(portal) &&
				row.effect == entities.EffectAllow {
				decision.Allowed = true
				decision.Reason = entities.ReasonPermissionGranted
				e.metrics.observeDecision(true, string(portal))
				return decision
			}
		}
	}

	decision.Reason = entities.ReasonPermissionMissing
	e.metrics.observeDecision(false, string(portal))
	return decision
}

// Apply persists the delta and updates the cached view in the same logical
// step. Individual writes mutate the loaded cache directly; no rebuild.
func (e *Engine) Apply(ctx context.Context, delta entities.Delta) error {
	if delta.IsEmpty() {
		return nil
	}
	if err := e.store.Apply(ctx, delta); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, relation := range delta.Remove {
		e.removeCached(relation)
	}
	for _, relation := range delta.Add {
		e.addCached(relation)
	}
	return nil
}

// RemoveFiltered deletes every tuple of kind whose field at fieldIndex equals
// value, from the store and the cache together.
func (e *Engine) RemoveFiltered(ctx context.Context, kind entities.RelationKind, fieldIndex int, value string) error {
	matched, err := e.matchFiltered(kind, fieldIndex, value)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return nil
	}
	if err := e.store.RemoveFiltered(ctx, kind, fieldIndex, value); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, relation := range matched {
		e.removeCached(relation)
	}
	return nil
}

// Reload rebuilds the cache from the store. Concurrent callers are coalesced
// into a single rebuild. Only bulk/structural synchronizer paths call this.
func (e *Engine) Reload(ctx context.Context) error {
	_, err, _ := e.reloads.Do("reload", func() (any, error) {
		return nil, e.reload(ctx)
	})
	return err
}

func (e *Engine) reload(ctx context.Context) error {
	assignments := make(map[userOrg][]string)
	scopes := make(map[string]struct{})
	hierarchy := make(map[string]map[string][]string)
	grants := make(map[string][]permissionRow)
	counts := make(map[string]int, 4)

	for _, kind := range []entities.RelationKind{
		entities.RelationUserRole,
		entities.RelationOrgScope,
		entities.RelationRoleHierarchy,
		entities.RelationPermission,
	} {
		relations, err := e.store.Query(ctx, kind, nil)
		if err != nil {
			return err
		}
		counts[string(kind)] = len(relations)
		for _, relation := range relations {
			switch kind {
			case entities.RelationUserRole:
				addAssignment(assignments, relation)
			case entities.RelationOrgScope:
				if len(relation.Fields) >= 1 {
					scopes[relation.Fields[0]] = struct{}{}
				}
			case entities.RelationRoleHierarchy:
				addEdge(hierarchy, relation)
			case entities.RelationPermission:
				addGrant(grants, relation)
			}
		}
	}

	e.mu.Lock()
	e.assignments = assignments
	e.scopes = scopes
	e.hierarchy = hierarchy
	e.grants = grants
	e.mu.Unlock()

	e.metrics.observeReload(counts)
	e.logger.Info("authorization cache reloaded",
		"event", "authz_cache_reloaded",
		"module", "identity-access/policy-engine",
		"layer", "engine",
		"user_role_rows", counts[string(entities.RelationUserRole)],
		"org_scope_rows", counts[string(entities.RelationOrgScope)],
		"hierarchy_rows", counts[string(entities.RelationRoleHierarchy)],
		"permission_rows", counts[string(entities.RelationPermission)],
	)
	return nil
}

// UserRoleKeys returns the cached role keys assigned to (user, organization).
func (e *Engine) UserRoleKeys(userID, organizationID string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cached := e.assignments[userOrg{userID: userID, organizationID: organizationID}]
	keys := make([]string, len(cached))
	copy(keys, cached)
	return keys
}

// UserRoleRelations returns the cached assignment tuples for (user, org).
func (e *Engine) UserRoleRelations(userID, organizationID string) []entities.Relation {
	relations := make([]entities.Relation, 0, 1)
	for _, roleKey := range e.UserRoleKeys(userID, organizationID) {
		relations = append(relations, entities.NewUserRoleRelation(userID, roleKey, organizationID))
	}
	return relations
}

// PermissionRelations returns the cached permission tuples whose role
// discriminator and organization match.
func (e *Engine) PermissionRelations(roleKey, organizationID string) []entities.Relation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var relations []entities.Relation
	for _, row := range e.grants[roleKey] {
		if row.organizationID != organizationID {
			continue
		}
		relations = append(relations, permissionRelation(row))
	}
	return relations
}

// HierarchyRelations returns every cached portal-scoped edge that references
// the role key on either side.
func (e *Engine) HierarchyRelations(roleKey string, portal entities.Portal) []entities.Relation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var relations []entities.Relation
	for child, parents := range e.hierarchy[string(portal)] {
		for _, parent := range parents {
			if child != roleKey && parent != roleKey {
				continue
			}
			relations = append(relations, entities.NewHierarchyEdge(child, parent, portal))
		}
	}
	return relations
}

// HasScope reports whether the organization has its isolation scope row.
func (e *Engine) HasScope(organizationID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.scopes[organizationID]
	return ok
}

// RelationsForOrganization returns every cached tuple whose organization
// field matches, used by the deletion cascade.
func (e *Engine) RelationsForOrganization(organizationID string) []entities.Relation {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var relations []entities.Relation
	for key, roleKeys := range e.assignments {
		if key.organizationID != organizationID {
			continue
		}
		for _, roleKey := range roleKeys {
			relations = append(relations, entities.NewUserRoleRelation(key.userID, roleKey, organizationID))
		}
	}
	for _, rows := range e.grants {
		for _, row := range rows {
			if row.organizationID == organizationID {
				relations = append(relations, permissionRelation(row))
			}
		}
	}
	if _, ok := e.scopes[organizationID]; ok {
		relations = append(relations, entities.NewOrgScopeRelation(organizationID))
	}
	return relations
}

func (e *Engine) matchFiltered(kind entities.RelationKind, fieldIndex int, value string) ([]entities.Relation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var matched []entities.Relation
	appendMatch := func(relation entities.Relation) {
		if fieldIndex >= 0 && fieldIndex < len(relation.Fields) && relation.Fields[fieldIndex] == value {
			matched = append(matched, relation)
		}
	}

	switch kind {
	case entities.RelationUserRole:
		for key, roleKeys := range e.assignments {
			for _, roleKey := range roleKeys {
				appendMatch(entities.NewUserRoleRelation(key.userID, roleKey, key.organizationID))
			}
		}
	case entities.RelationOrgScope:
		for orgID := range e.scopes {
			appendMatch(entities.NewOrgScopeRelation(orgID))
		}
	case entities.RelationRoleHierarchy:
		for portal, edges := range e.hierarchy {
			for child, parents := range edges {
				for _, parent := range parents {
					appendMatch(entities.NewHierarchyEdge(child, parent, entities.Portal(portal)))
				}
			}
		}
	case entities.RelationPermission:
		for _, rows := range e.grants {
			for _, row := range rows {
				appendMatch(permissionRelation(row))
			}
		}
	default:
		return nil, fmt.Errorf("unknown relation kind %q", kind)
	}
	return matched, nil
}

func (e *Engine) addCached(relation entities.Relation) {
	switch relation.Kind {
	case entities.RelationUserRole:
		addAssignment(e.assignments, relation)
	case entities.RelationOrgScope:
		if len(relation.Fields) >= 1 {
			e.scopes[relation.Fields[0]] = struct{}{}
		}
	case entities.RelationRoleHierarchy:
		addEdge(e.hierarchy, relation)
	case entities.RelationPermission:
		addGrant(e.grants, relation)
	}
}

func (e *Engine) removeCached(relation entities.Relation) {
	switch relation.Kind {
	case entities.RelationUserRole:
		if len(relation.Fields) != 3 {
			return
		}
		key := userOrg{userID: relation.Fields[0], organizationID: relation.Fields[2]}
		e.assignments[key] = withoutString(e.assignments[key], relation.Fields[1])
		if len(e.assignments[key]) == 0 {
			delete(e.assignments, key)
		}
	case entities.RelationOrgScope:
		if len(relation.Fields) >= 1 {
			delete(e.scopes, relation.Fields[0])
		}
	case entities.RelationRoleHierarchy:
		if len(relation.Fields) != 3 {
			return
		}
		edges := e.hierarchy[relation.Fields[2]]
		if edges == nil {
			return
		}
		edges[relation.Fields[0]] = withoutString(edges[relation.Fields[0]], relation.Fields[1])
		if len(edges[relation.Fields[0]]) == 0 {
			delete(edges, relation.Fields[0])
		}
	case entities.RelationPermission:
		normalized := relation.NormalizePermission()
		if len(normalized.Fields) != 7 {
			return
		}
		target := rowFromFields(normalized.Fields)
		rows := e.grants[target.roleKey]
		kept := rows[:0]
		for _, row := range rows {
			if row != target {
				kept = append(kept, row)
			}
		}
		if len(kept) == 0 {
			delete(e.grants, target.roleKey)
		} else {
			e.grants[target.roleKey] = kept
		}
	}
}

func addAssignment(assignments map[userOrg][]string, relation entities.Relation) {
	if len(relation.Fields) != 3 {
		return
	}
	key := userOrg{userID: relation.Fields[0], organizationID: relation.Fields[2]}
	for _, existing := range assignments[key] {
		if existing == relation.Fields[1] {
			return
		}
	}
	assignments[key] = append(assignments[key], relation.Fields[1])
}

func addEdge(hierarchy map[string]map[string][]string, relation entities.Relation) {
	if len(relation.Fields) != 3 {
		return
	}
	portal := relation.Fields[2]
	if hierarchy[portal] == nil {
		hierarchy[portal] = make(map[string][]string)
	}
	for _, existing := range hierarchy[portal][relation.Fields[0]] {
		if existing == relation.Fields[1] {
			return
		}
	}
	hierarchy[portal][relation.Fields[0]] = append(hierarchy[portal][relation.Fields[0]], relation.Fields[1])
}

func addGrant(grants map[string][]permissionRow, relation entities.Relation) {
	normalized := relation.NormalizePermission()
	if len(normalized.Fields) != 7 {
		return
	}
	row := rowFromFields(normalized.Fields)
	for _, existing := range grants[row.roleKey] {
		if existing == row {
			return
		}
	}
	grants[row.roleKey] = append(grants[row.roleKey], row)
}

func rowFromFields(fields []string) permissionRow {
	return permissionRow{
		subject:        fields[0],
		resource:       fields[1],
		action:         fields[2],
		organizationID: fields[3],
		effect:         fields[4],
		portal:         fields[5],
		roleKey:        fields[6],
	}
}

func permissionRelation(row permissionRow) entities.Relation {
	return entities.Relation{
		Kind: entities.RelationPermission,
		Fields: []string{
			row.subject, row.resource, row.action,
			row.organizationID, row.effect, row.portal, row.roleKey,
		},
	}
}

func withoutString(values []string, drop string) []string {
	kept := values[:0]
	for _, value := range values {
		if value != drop {
			kept = append(kept, value)
		}
	}
	return kept
}
