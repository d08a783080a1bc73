package roles

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/folio-dev/folio/core/logger"
	"github.com/folio-dev/folio/core/models"
)

type assignment struct {
	role      models.Role
	size      int64
	extension string
}

// Classifier assigns semantic roles via the ordered rule tiers in rules.go
// and maintains a per-role file index for reporting and constraint checks.
// Roles are recomputed on every scan; only a pinned role survives rescans
// untouched.
type Classifier struct {
	mutex       sync.RWMutex
	constraints map[models.Role]Constraint
	assignments map[string]assignment
}

func NewClassifier(overrides map[models.Role]Constraint) *Classifier {
	constraints := DefaultConstraints()
	for role, constraint := range overrides {
		constraints[role] = constraint
	}
	return &Classifier{
		constraints: constraints,
		assignments: make(map[string]assignment),
	}
}

// Classify returns the role for a record. A pinned role short-circuits every
// rule. content may be nil for binary files.
func (c *Classifier) Classify(record *models.FileRecord, content []byte) models.Role {
	if record.Pinned && record.Role.Valid() {
		return record.Role
	}

	ext := strings.ToLower(record.Extension)
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(record.Path), record.Extension))

	if role, ok := nameRoles[base]; ok {
		return role
	}
	if role, ok := extRoles[ext]; ok {
		return role
	}
	if textExts[ext] && len(content) > 0 {
		for _, rule := range contentRules {
			for _, pattern := range rule.patterns {
				if pattern.Match(content) {
					return rule.role
				}
			}
		}
	}
	normalized := strings.ReplaceAll(record.Path, string(filepath.Separator), "/")
	for _, dir := range dirRoles {
		if strings.Contains(normalized, dir.fragment) {
			return dir.role
		}
	}
	if textExts[ext] {
		return models.RoleContent
	}
	return models.RoleUnknown
}

// Record indexes a record's current role, replacing any previous assignment
// for the same path.
func (c *Classifier) Record(record *models.FileRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.assignments[record.Path] = assignment{
		role:      record.Role,
		size:      record.SizeBytes,
		extension: strings.ToLower(record.Extension),
	}
}

// Forget drops a path from the index.
func (c *Classifier) Forget(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.assignments, path)
}

// RoleSummary aggregates the files currently assigned to one role.
type RoleSummary struct {
	Count      int      `json:"count"`
	TotalSize  int64    `json:"total_size"`
	Extensions []string `json:"extensions"`
}

// Report describes the current role distribution plus constraint violations,
// shaped for the CLI/UI layers.
type Report struct {
	Roles      map[models.Role]RoleSummary `json:"roles"`
	Violations []Violation                 `json:"violations"`
}

// Report builds the role/constraint report over the current index.
func (c *Classifier) Report() *Report {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	summaries := make(map[models.Role]RoleSummary)
	extensions := make(map[models.Role]map[string]bool)
	for _, assigned := range c.assignments {
		summary := summaries[assigned.role]
		summary.Count++
		summary.TotalSize += assigned.size
		summaries[assigned.role] = summary

		if extensions[assigned.role] == nil {
			extensions[assigned.role] = make(map[string]bool)
		}
		extensions[assigned.role][assigned.extension] = true
	}
	for role, summary := range summaries {
		for ext := range extensions[role] {
			summary.Extensions = append(summary.Extensions, ext)
		}
		sort.Strings(summary.Extensions)
		summaries[role] = summary
	}

	return &Report{
		Roles:      summaries,
		Violations: c.validateLocked(),
	}
}

// ValidateConstraints reports cardinality and extension violations. These are
// advisory: the pipeline continues regardless.
func (c *Classifier) ValidateConstraints() []Violation {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.validateLocked()
}

func (c *Classifier) validateLocked() []Violation {
	counts := make(map[models.Role]int)
	byPath := make([]string, 0, len(c.assignments))
	for path := range c.assignments {
		byPath = append(byPath, path)
	}
	sort.Strings(byPath)

	var violations []Violation
	for _, path := range byPath {
		assigned := c.assignments[path]
		counts[assigned.role]++

		constraint, ok := c.constraints[assigned.role]
		if !ok || len(constraint.AllowedExtensions) == 0 {
			continue
		}
		allowed := false
		for _, ext := range constraint.AllowedExtensions {
			if strings.EqualFold(ext, assigned.extension) {
				allowed = true
				break
			}
		}
		if !allowed {
			violations = append(violations, Violation{
				Role:      assigned.role,
				Issue:     IssueInvalidExtension,
				Path:      path,
				Extension: assigned.extension,
			})
		}
	}

	for _, role := range models.AllRoles {
		constraint, ok := c.constraints[role]
		if !ok || constraint.MaxFiles <= 0 {
			continue
		}
		if counts[role] > constraint.MaxFiles {
			violations = append(violations, Violation{
				Role:    role,
				Issue:   IssueTooManyFiles,
				Current: counts[role],
				Max:     constraint.MaxFiles,
			})
		}
	}

	if len(violations) > 0 {
		logger.Debug("Classifier: %d constraint violations", len(violations))
	}
	return violations
}
