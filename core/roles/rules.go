package roles

import (
	"regexp"

	"github.com/folio-dev/folio/core/models"
)

// The classifier is rule-table driven: each tier below is data consulted in
// a fixed order by Classify, so individual rules stay independently testable.

// nameRoles matches the lowercased base filename with its extension stripped.
var nameRoles = map[string]models.Role{
	"readme":    models.RoleHero,
	"index":     models.RoleHero,
	"bio":       models.RoleBio,
	"about":     models.RoleBio,
	"resume":    models.RoleResume,
	"cv":        models.RoleResume,
	"contact":   models.RoleContact,
	"projects":  models.RoleProjects,
	"portfolio": models.RoleProjects,
	"gallery":   models.RoleGallery,
}

// extRoles matches the lowercased file extension.
var extRoles = map[string]models.Role{
	".jpg":  models.RoleGallery,
	".jpeg": models.RoleGallery,
	".png":  models.RoleGallery,
	".gif":  models.RoleGallery,
	".webp": models.RoleGallery,
	".svg":  models.RoleGallery,
	".bmp":  models.RoleGallery,
	".css":  models.RoleStyles,
	".scss": models.RoleStyles,
	".js":   models.RoleScripts,
	".mjs":  models.RoleScripts,
	".ts":   models.RoleScripts,
	".pdf":  models.RoleResume,
}

// textExts marks extensions whose content is scanned by the heuristic tier
// and which default to the content role.
var textExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
}

type contentRule struct {
	role     models.Role
	patterns []*regexp.Regexp
}

// contentRules are evaluated in order; the first rule with any matching
// pattern wins.
var contentRules = []contentRule{
	{
		role: models.RoleContact,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`),
			regexp.MustCompile(`(?i)\bphone\b|\+?\d[\d\s().-]{7,}\d`),
			regexp.MustCompile(`(?i)\b(twitter|linkedin|instagram|mastodon|social)\b`),
		},
	},
	{
		role: models.RoleProjects,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(github|gitlab|bitbucket)\.(com|org)/`),
			regexp.MustCompile(`(?i)\b(demo|tech stack|built with)\b`),
		},
	},
	{
		role: models.RoleBio,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(about me|my name is|experience)\b`),
		},
	},
}

// dirRoles matches path fragments, checked in order.
var dirRoles = []struct {
	fragment string
	role     models.Role
}{
	{"/images/", models.RoleGallery},
	{"/gallery/", models.RoleGallery},
	{"/css/", models.RoleStyles},
	{"/styles/", models.RoleStyles},
	{"/js/", models.RoleScripts},
	{"/scripts/", models.RoleScripts},
}
