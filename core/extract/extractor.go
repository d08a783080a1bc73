package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/folio-dev/folio/core/logger"
)

// scanFunc pulls referenced targets out of raw file content. Scanners are
// best-effort: malformed input yields fewer references, never an error.
type scanFunc func(content []byte) []string

// scanners maps a file extension to its reference scanner. Extensions not in
// the table contribute no dependencies.
var scanners = map[string]scanFunc{
	".md":       scanMarkdown,
	".markdown": scanMarkdown,
	".css":      scanStylesheet,
	".scss":     scanStylesheet,
	".js":       scanScript,
	".mjs":      scanScript,
	".ts":       scanScript,
	".html":     scanHTML,
	".htm":      scanHTML,
}

var (
	markdownRefPattern = regexp.MustCompile(`!?\[[^\]]*\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	importPattern      = regexp.MustCompile(`@import\s+(?:url\()?["']([^"']+)["']\)?`)
	scriptPatterns     = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*import\s+(?:[\w{},*\s]+\s+from\s+)?["']([^"']+)["']`),
		regexp.MustCompile(`require\(\s*["']([^"']+)["']\s*\)`),
	}
	schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// Extractor resolves references found in project files into project-relative
// dependency paths. Remote URLs are never tracked; targets resolving outside
// the project root are dropped.
type Extractor struct {
	root string
}

func New(root string) *Extractor {
	return &Extractor{root: filepath.Clean(root)}
}

// Extract returns the ordered, deduplicated dependency paths referenced by
// the file at path. Unknown extensions return nil.
func (e *Extractor) Extract(path string, content []byte) []string {
	scan, ok := scanners[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil
	}

	var deps []string
	seen := make(map[string]bool)
	for _, target := range scan(content) {
		resolved, ok := e.resolve(path, target)
		if !ok || seen[resolved] {
			continue
		}
		seen[resolved] = true
		deps = append(deps, resolved)
	}
	if len(deps) > 0 {
		logger.Debug("Extractor: %s references %d files", path, len(deps))
	}
	return deps
}

// resolve turns a raw reference into an absolute path inside the project
// root. URLs, anchors, and root-escaping targets are rejected.
func (e *Extractor) resolve(from, target string) (string, bool) {
	if target == "" || strings.HasPrefix(target, "#") {
		return "", false
	}
	if schemePattern.MatchString(target) {
		return "", false
	}
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
		if target == "" {
			return "", false
		}
	}

	var resolved string
	if filepath.IsAbs(target) {
		resolved = filepath.Clean(target)
	} else if strings.HasPrefix(target, "/") {
		resolved = filepath.Join(e.root, target)
	} else {
		resolved = filepath.Join(filepath.Dir(from), target)
	}

	rel, err := filepath.Rel(e.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return resolved, true
}

func scanMarkdown(content []byte) []string {
	var targets []string
	for _, match := range markdownRefPattern.FindAllSubmatch(content, -1) {
		targets = append(targets, string(match[1]))
	}
	return targets
}

func scanStylesheet(content []byte) []string {
	var targets []string
	for _, match := range importPattern.FindAllSubmatch(content, -1) {
		targets = append(targets, string(match[1]))
	}
	return targets
}

func scanScript(content []byte) []string {
	var targets []string
	for _, pattern := range scriptPatterns {
		for _, match := range pattern.FindAllSubmatch(content, -1) {
			targets = append(targets, string(match[1]))
		}
	}
	return targets
}

// CountMarkdownRefs returns the number of link and image references in
// markdown content, in that order. Used for file metadata, not for the
// dependency graph.
func CountMarkdownRefs(content []byte) (links, images int) {
	for _, match := range markdownRefPattern.FindAllSubmatch(content, -1) {
		if strings.HasPrefix(string(match[0]), "!") {
			images++
		} else {
			links++
		}
	}
	return links, images
}
