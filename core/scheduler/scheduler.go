package scheduler

import (
	"errors"
	"fmt"

	"github.com/folio-dev/folio/core/cache"
	"github.com/folio-dev/folio/core/graph"
	"github.com/folio-dev/folio/core/logger"
)

// TargetKeyFunc maps a file path to its cache target identifier.
type TargetKeyFunc func(path string) string

// DefaultTargetKey prefixes paths the way the pipeline caches processing
// results.
func DefaultTargetKey(path string) string {
	return "process:" + path
}

// Plan is the scheduler's answer for one candidate set: which targets must be
// reprocessed, in dependency order, and which cached results stay valid.
type Plan struct {
	Stale   []string          // dependency-ordered processing queue
	Reused  []string          // candidates whose cached results are valid
	Removed []string          // candidates that no longer exist on disk
	Reasons map[string]string // why each stale target was invalidated
}

// Scheduler decides staleness from live fingerprints, the dependency graph,
// and the persisted cache. Staleness is two-level: a target reprocesses when
// its own combined fingerprint (bytes + mtime) changed, but it invalidates
// its consumers only when its bytes changed. A bare touch therefore
// reprocesses one file without cascading.
type Scheduler struct {
	graph *graph.Graph
	store *cache.Store
	key   TargetKeyFunc
}

func New(g *graph.Graph, store *cache.Store, key TargetKeyFunc) *Scheduler {
	if key == nil {
		key = DefaultTargetKey
	}
	return &Scheduler{graph: g, store: store, key: key}
}

// Plan computes the stale set for the candidates. known carries fingerprints
// already computed this run (typically by the pipeline's scan phase); any
// path not in it, including dependencies outside the candidate set, is
// fingerprinted from disk on demand.
func (s *Scheduler) Plan(candidates []string, known map[string]*cache.Fingerprint) (*Plan, error) {
	plan := &Plan{Reasons: make(map[string]string)}

	fingerprints := make(map[string]*cache.Fingerprint, len(known))
	for path, fp := range known {
		fingerprints[path] = fp
	}

	var live []string
	for _, path := range candidates {
		if _, err := s.liveFingerprint(path, fingerprints); err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				logger.Debug("Scheduler: %s removed from disk, dropping", path)
				plan.Removed = append(plan.Removed, path)
				continue
			}
			return nil, err
		}
		live = append(live, path)
	}

	stale := make(map[string]bool)
	roots := make(map[string]bool)
	for _, path := range live {
		needs, reason := s.needsRebuild(path, fingerprints)
		if !needs {
			continue
		}
		stale[path] = true
		plan.Reasons[path] = reason
		if s.invalidates(path, fingerprints, make(map[string]bool)) {
			roots[path] = true
		}
	}

	s.expandStale(live, roots, stale, plan.Reasons)

	plan.Stale = s.orderStale(live, stale)
	for _, path := range live {
		if !stale[path] {
			plan.Reused = append(plan.Reused, path)
		}
	}

	logger.Debug("Scheduler: %d candidates -> %d stale, %d reused, %d removed",
		len(candidates), len(plan.Stale), len(plan.Reused), len(plan.Removed))
	return plan, nil
}

// Full returns a plan that treats every existing candidate as stale, still in
// dependency order, for non-incremental runs.
func (s *Scheduler) Full(candidates []string, known map[string]*cache.Fingerprint) (*Plan, error) {
	plan := &Plan{Reasons: make(map[string]string)}

	fingerprints := make(map[string]*cache.Fingerprint, len(known))
	for path, fp := range known {
		fingerprints[path] = fp
	}

	stale := make(map[string]bool)
	var live []string
	for _, path := range candidates {
		if _, err := s.liveFingerprint(path, fingerprints); err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				plan.Removed = append(plan.Removed, path)
				continue
			}
			return nil, err
		}
		live = append(live, path)
		stale[path] = true
		plan.Reasons[path] = "full rebuild requested"
	}

	plan.Stale = s.orderStale(live, stale)
	return plan, nil
}

// needsRebuild reports whether path itself must be reprocessed.
func (s *Scheduler) needsRebuild(path string, fingerprints map[string]*cache.Fingerprint) (bool, string) {
	entry, exists := s.store.Get(s.key(path))
	if !exists {
		return true, "no cached result"
	}

	live, err := s.liveFingerprint(path, fingerprints)
	if err != nil {
		return true, fmt.Sprintf("unreadable: %v", err)
	}
	if live.ContentHash != entry.ContentHash {
		return true, "content changed"
	}
	if live.Hash != entry.Fingerprint {
		return true, "modification time changed"
	}

	for _, dep := range s.graph.DependenciesOf(path) {
		visited := map[string]bool{path: true}
		if s.invalidates(dep, fingerprints, visited) {
			return true, "stale dependency: " + dep
		}
	}
	return false, ""
}

// invalidates reports whether path's cached result can no longer be trusted
// by its consumers: missing entry, vanished file, changed bytes, or a
// transitively changed dependency. A bare mtime change does not count. The
// visited set breaks recursion on dependency cycles: a target already being
// checked is treated as not invalidating.
func (s *Scheduler) invalidates(path string, fingerprints map[string]*cache.Fingerprint, visited map[string]bool) bool {
	if visited[path] {
		return false
	}
	visited[path] = true

	entry, exists := s.store.Get(s.key(path))
	if !exists {
		return true
	}
	live, err := s.liveFingerprint(path, fingerprints)
	if err != nil {
		return true
	}
	if live.ContentHash != entry.ContentHash {
		return true
	}

	for _, dep := range s.graph.DependenciesOf(path) {
		if s.invalidates(dep, fingerprints, visited) {
			return true
		}
	}
	return false
}

// expandStale grows the stale set with every transitive dependent of an
// invalidating root until a fixed point. Propagation passes through files
// outside the candidate set, but only candidates join the queue.
func (s *Scheduler) expandStale(live []string, roots, stale map[string]bool, reasons map[string]string) {
	candidate := make(map[string]bool, len(live))
	for _, path := range live {
		candidate[path] = true
	}

	reached := make(map[string]bool, len(roots))
	var frontier []string
	for path := range roots {
		reached[path] = true
		frontier = append(frontier, path)
	}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for _, dependent := range s.graph.DependentsOf(current) {
			if reached[dependent] {
				continue
			}
			reached[dependent] = true
			frontier = append(frontier, dependent)
			if candidate[dependent] && !stale[dependent] {
				stale[dependent] = true
				reasons[dependent] = "depends on stale target: " + current
			}
		}
	}
}

// orderStale produces the processing queue: dependencies before dependents
// via indegree counting, ties broken by candidate input order then ascending
// path. A cycle inside the stale set cannot drain normally; its earliest
// member is released so ordering always terminates.
func (s *Scheduler) orderStale(input []string, stale map[string]bool) []string {
	position := make(map[string]int, len(input))
	var members []string
	for i, path := range input {
		if stale[path] {
			if _, seen := position[path]; !seen {
				position[path] = i
				members = append(members, path)
			}
		}
	}

	indegree := make(map[string]int, len(members))
	consumers := make(map[string][]string)
	for _, target := range members {
		for _, dep := range s.graph.DependenciesOf(target) {
			if stale[dep] && dep != target {
				indegree[target]++
				consumers[dep] = append(consumers[dep], target)
			}
		}
	}

	done := make(map[string]bool, len(members))
	ordered := make([]string, 0, len(members))
	for len(ordered) < len(members) {
		best := ""
		for _, target := range members {
			if done[target] || indegree[target] > 0 {
				continue
			}
			if best == "" || position[target] < position[best] ||
				(position[target] == position[best] && target < best) {
				best = target
			}
		}
		if best == "" {
			// dependency cycle: release the earliest remaining member
			for _, target := range members {
				if !done[target] {
					best = target
					break
				}
			}
		}
		done[best] = true
		ordered = append(ordered, best)
		for _, consumer := range consumers[best] {
			indegree[consumer]--
		}
	}
	return ordered
}

func (s *Scheduler) liveFingerprint(path string, fingerprints map[string]*cache.Fingerprint) (*cache.Fingerprint, error) {
	if fp, ok := fingerprints[path]; ok {
		return fp, nil
	}
	fp, err := cache.Compute(path)
	if err != nil {
		return nil, err
	}
	fingerprints[path] = fp
	return fp, nil
}
