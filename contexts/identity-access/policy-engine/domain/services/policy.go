// Package services holds pure policy computations shared by the engine and
// the synchronizer. No I/O, no logging.
package services

import (
	"sort"
	"strings"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
)

// ExpandRoles computes the transitive closure of inherited role keys from the
// given starting keys over portal-scoped hierarchy edges (child → parents).
// The result always contains the starting keys themselves, sorted.
func ExpandRoles(edges map[string][]string, start ...string) []string {
	visited := make(map[string]struct{}, len(start))
	queue := make([]string, 0, len(start))
	for _, key := range start {
		if key == "" {
			continue
		}
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		queue = append(queue, key)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parent := range edges[current] {
			if _, seen := visited[parent]; seen {
				continue
			}
			visited[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}

	closure := make([]string, 0, len(visited))
	for key := range visited {
		closure = append(closure, key)
	}
	sort.Strings(closure)
	return closure
}

// RelationKey canonicalizes a relation for set comparison.
func RelationKey(relation entities.Relation) string {
	return string(relation.Kind) + "\x1f" + strings.Join(relation.Fields, "\x1f")
}

// DiffRelations computes the delta that turns the actual relation set into
// the expected one: add only missing tuples, remove only extra tuples.
// Relations present in both sets produce no mutation, which keeps repeated
// synchronization idempotent and shrinks the inconsistency window.
func DiffRelations(expected, actual []entities.Relation) entities.Delta {
	expectedSet := make(map[string]entities.Relation, len(expected))
	for _, relation := range expected {
		expectedSet[RelationKey(relation)] = relation
	}
	actualSet := make(map[string]entities.Relation, len(actual))
	for _, relation := range actual {
		actualSet[RelationKey(relation)] = relation
	}

	var delta entities.Delta
	for key, relation := range expectedSet {
		if _, ok := actualSet[key]; !ok {
			delta.Add = append(delta.Add, relation)
		}
	}
	for key, relation := range actualSet {
		if _, ok := expectedSet[key]; !ok {
			delta.Remove = append(delta.Remove, relation)
		}
	}

	sortRelations(delta.Add)
	sortRelations(delta.Remove)
	return delta
}

func sortRelations(relations []entities.Relation) {
	sort.Slice(relations, func(i, j int) bool {
		return RelationKey(relations[i]) < RelationKey(relations[j])
	})
}
