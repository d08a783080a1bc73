package models

import "time"

// Role is a semantic category assigned to a content file. It drives layout
// grouping and constraint validation.
type Role string

const (
	RoleHero     Role = "hero"
	RoleBio      Role = "bio"
	RoleResume   Role = "resume"
	RoleGallery  Role = "gallery"
	RoleProjects Role = "projects"
	RoleContact  Role = "contact"
	RoleStyles   Role = "styles"
	RoleScripts  Role = "scripts"
	RoleContent  Role = "content"
	RoleUnknown  Role = "unknown"
)

// AllRoles lists every role in a stable order.
var AllRoles = []Role{
	RoleHero, RoleBio, RoleResume, RoleGallery, RoleProjects,
	RoleContact, RoleStyles, RoleScripts, RoleContent, RoleUnknown,
}

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// FileMetadata holds lightweight derived stats about a content file.
type FileMetadata struct {
	WordCount   int               `json:"word_count,omitempty"`
	LinkCount   int               `json:"link_count,omitempty"`
	ImageCount  int               `json:"image_count,omitempty"`
	FrontMatter map[string]string `json:"front_matter,omitempty"`
}

// FileRecord is one tracked input file. Records are created on first
// discovery, mutated in place on every rescan, and removed only when the
// file is explicitly dropped from the project.
type FileRecord struct {
	Path         string       `json:"path"`
	RelPath      string       `json:"rel_path"`
	Extension    string       `json:"extension"`
	SizeBytes    int64        `json:"size_bytes"`
	ModifiedAt   time.Time    `json:"modified_at"`
	Fingerprint  string       `json:"fingerprint"`
	Role         Role         `json:"role,omitempty"`
	Pinned       bool         `json:"pinned,omitempty"`
	Dependencies []string     `json:"dependencies,omitempty"`
	Metadata     FileMetadata `json:"metadata"`
}
