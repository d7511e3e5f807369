// Package catalog holds the static per-portal permission vocabulary and the
// default role archetypes used at organization bootstrap. Both are
// configuration data, not runtime state.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
)

//go:embed permissions.yaml
var defaultPermissionsYAML []byte

// Mapping is the (resource, action) pair behind one permission code.
type Mapping struct {
	Resource string `yaml:"resource"`
	Action   string `yaml:"action"`
}

type permissionEntry struct {
	Code     string `yaml:"code"`
	Resource string `yaml:"resource"`
	Action   string `yaml:"action"`
}

type portalDocument struct {
	Permissions []permissionEntry `yaml:"permissions"`
}

type catalogDocument struct {
	Portals map[string]portalDocument `yaml:"portals"`
}

// Catalog resolves permission codes to (resource, action) per portal.
type Catalog struct {
	portals map[entities.Portal]map[string]Mapping
}

// Load parses the embedded default vocabulary. A parse failure here is a
// boot-time configuration error.
func Load() (*Catalog, error) {
	return Parse(defaultPermissionsYAML)
}

// Parse builds a catalog from a YAML document.
func Parse(raw []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse permission catalog: %w", err)
	}
	if len(doc.Portals) == 0 {
		return nil, fmt.Errorf("permission catalog has no portals")
	}

	portals := make(map[entities.Portal]map[string]Mapping, len(doc.Portals))
	for portal, section := range doc.Portals {
		codes := make(map[string]Mapping, len(section.Permissions))
		for _, entry := range section.Permissions {
			if entry.Code == "" || entry.Resource == "" || entry.Action == "" {
				return nil, fmt.Errorf("permission catalog: incomplete entry %q in portal %q", entry.Code, portal)
			}
			if _, dup := codes[entry.Code]; dup {
				return nil, fmt.Errorf("permission catalog: duplicate code %q in portal %q", entry.Code, portal)
			}
			codes[entry.Code] = Mapping{Resource: entry.Resource, Action: entry.Action}
		}
		portals[entities.Portal(portal)] = codes
	}
	return &Catalog{portals: portals}, nil
}

// Resolve looks up one permission code within a portal.
func (c *Catalog) Resolve(portal entities.Portal, code string) (Mapping, bool) {
	mapping, ok := c.portals[portal][code]
	return mapping, ok
}

// Codes returns the number of codes registered for a portal.
func (c *Catalog) Codes(portal entities.Portal) int {
	return len(c.portals[portal])
}

// PermissionRelations maps a role's permission list to its expected grant
// rows, preserving order. Codes with no mapping are returned separately so
// the caller can warn and skip them; they never fail the translation.
func (c *Catalog) PermissionRelations(role entities.Role) ([]entities.Relation, []string) {
	relations := make([]entities.Relation, 0, len(role.Permissions))
	var unmapped []string
	seen := make(map[string]struct{}, len(role.Permissions))
	for _, code := range role.Permissions {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		mapping, ok := c.Resolve(role.Portal, code)
		if !ok {
			unmapped = append(unmapped, code)
			continue
		}
		relations = append(relations, entities.NewPermissionRelation(
			role.Key, mapping.Resource, mapping.Action, role.OrganizationID, role.Portal,
		))
	}
	return relations, unmapped
}
