package roles

import "github.com/folio-dev/folio/core/models"

// Violation issue kinds.
const (
	IssueTooManyFiles     = "too_many_files"
	IssueInvalidExtension = "invalid_extension"
)

// Violation is one advisory constraint problem. For too_many_files, Current
// and Max are set; for invalid_extension, Path and Extension are set.
type Violation struct {
	Role      models.Role `json:"role"`
	Issue     string      `json:"issue"`
	Path      string      `json:"path,omitempty"`
	Extension string      `json:"extension,omitempty"`
	Current   int         `json:"current,omitempty"`
	Max       int         `json:"max,omitempty"`
}

// Constraint bounds a role's cardinality and extensions. Zero MaxFiles means
// unlimited; an empty extension list allows anything.
type Constraint struct {
	MaxFiles          int
	AllowedExtensions []string
}

// DefaultConstraints returns the built-in per-role constraints. Callers may
// override individual roles via configuration.
func DefaultConstraints() map[models.Role]Constraint {
	return map[models.Role]Constraint{
		models.RoleHero: {
			MaxFiles:          1,
			AllowedExtensions: []string{".md", ".txt", ".html"},
		},
		models.RoleBio: {
			MaxFiles:          1,
			AllowedExtensions: []string{".md", ".txt", ".html"},
		},
		models.RoleResume: {
			MaxFiles:          2,
			AllowedExtensions: []string{".pdf", ".md", ".txt"},
		},
		models.RoleContact: {
			MaxFiles:          1,
			AllowedExtensions: []string{".md", ".txt", ".html"},
		},
		models.RoleStyles: {
			AllowedExtensions: []string{".css", ".scss"},
		},
		models.RoleScripts: {
			AllowedExtensions: []string{".js", ".mjs", ".ts"},
		},
		models.RoleGallery:  {},
		models.RoleProjects: {},
		models.RoleContent:  {},
		models.RoleUnknown:  {},
	}
}
