package graph

import (
	"sort"
	"sync"

	"github.com/folio-dev/folio/core/logger"
)

// Graph tracks directed dependency edges between files: an edge (from, to)
// means from's output is invalid if to changes. The adjacency map and its
// transpose are kept in sync on every mutation so dependent lookups stay
// O(1) amortized during invalidation propagation.
type Graph struct {
	mutex      sync.RWMutex
	deps       map[string]map[string]struct{} // from -> set of dependencies
	dependents map[string]map[string]struct{} // to -> set of dependents
}

func New() *Graph {
	return &Graph{
		deps:       make(map[string]map[string]struct{}),
		dependents: make(map[string]map[string]struct{}),
	}
}

// AddEdge records that from depends on to.
func (g *Graph) AddEdge(from, to string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.addEdge(from, to)
}

func (g *Graph) addEdge(from, to string) {
	if from == to {
		return
	}
	if g.deps[from] == nil {
		g.deps[from] = make(map[string]struct{})
	}
	g.deps[from][to] = struct{}{}
	if g.dependents[to] == nil {
		g.dependents[to] = make(map[string]struct{})
	}
	g.dependents[to][from] = struct{}{}
}

// SetDependencies replaces from's outgoing edges with the given set. Edges
// are derived from the file's current content, not accumulated across scans.
func (g *Graph) SetDependencies(from string, dependencies []string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	for to := range g.deps[from] {
		delete(g.dependents[to], from)
		if len(g.dependents[to]) == 0 {
			delete(g.dependents, to)
		}
	}
	delete(g.deps, from)

	for _, to := range dependencies {
		g.addEdge(from, to)
	}
	logger.Debug("Graph: %s now has %d dependencies", from, len(dependencies))
}

// DependenciesOf returns the direct dependencies of target, sorted.
func (g *Graph) DependenciesOf(target string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return sortedKeys(g.deps[target])
}

// DependentsOf returns the direct dependents of target, sorted.
func (g *Graph) DependentsOf(target string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return sortedKeys(g.dependents[target])
}

// AffectedBy returns every transitive dependent of target. Safe on cyclic
// graphs; target itself is excluded unless a cycle leads back to it.
func (g *Graph) AffectedBy(target string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	visited := map[string]bool{target: true}
	var affected []string
	queue := []string{target}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for dependent := range g.dependents[current] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			affected = append(affected, dependent)
			queue = append(queue, dependent)
		}
	}
	sort.Strings(affected)
	return affected
}

// RemoveNode removes target and every edge touching it.
func (g *Graph) RemoveNode(target string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	for to := range g.deps[target] {
		delete(g.dependents[to], target)
		if len(g.dependents[to]) == 0 {
			delete(g.dependents, to)
		}
	}
	delete(g.deps, target)

	for from := range g.dependents[target] {
		delete(g.deps[from], target)
		if len(g.deps[from]) == 0 {
			delete(g.deps, from)
		}
	}
	delete(g.dependents, target)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	count := 0
	for _, set := range g.deps {
		count += len(set)
	}
	return count
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
