package extract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_MarkdownLinksAndImages(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	content := []byte(`# Projects

See [my bio](bio.md) and ![headshot](images/photo.jpg "me").
External stuff like [github](https://github.com/someone) and
[mail](mailto:me@example.com) and [anchor](#section) is skipped.
Duplicates collapse: [again](bio.md).
`)
	deps := e.Extract(filepath.Join(root, "projects.md"), content)
	assert.Equal(t, []string{
		filepath.Join(root, "bio.md"),
		filepath.Join(root, "images", "photo.jpg"),
	}, deps)
}

func TestExtract_RelativePathsResolveAgainstFileDir(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	content := []byte(`[up](../shared/notes.md) and [sibling](./extra.md)`)
	deps := e.Extract(filepath.Join(root, "pages", "about.md"), content)
	assert.Equal(t, []string{
		filepath.Join(root, "shared", "notes.md"),
		filepath.Join(root, "pages", "extra.md"),
	}, deps)
}

func TestExtract_RootEscapeRejected(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	content := []byte(`[escape](../../etc/passwd)`)
	deps := e.Extract(filepath.Join(root, "a.md"), content)
	assert.Empty(t, deps)
}

func TestExtract_QueryAndFragmentStripped(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	content := []byte(`[a](bio.md#intro) and [b](photo.jpg?v=2)`)
	deps := e.Extract(filepath.Join(root, "index.md"), content)
	assert.Equal(t, []string{
		filepath.Join(root, "bio.md"),
		filepath.Join(root, "photo.jpg"),
	}, deps)
}

func TestExtract_StylesheetImports(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	content := []byte(`@import "base.css";
@import url('theme/colors.css');
body { color: red; }
`)
	deps := e.Extract(filepath.Join(root, "css", "main.css"), content)
	assert.Equal(t, []string{
		filepath.Join(root, "css", "base.css"),
		filepath.Join(root, "css", "theme", "colors.css"),
	}, deps)
}

func TestExtract_ScriptImportsAndRequires(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	content := []byte(`import { render } from './render.js'
import "./styles.css"
const util = require('./util.js')
import fetch from 'node-fetch'
`)
	deps := e.Extract(filepath.Join(root, "js", "app.js"), content)
	// bare module specifiers resolve inside the root and are kept; remote
	// URLs would not be
	assert.Contains(t, deps, filepath.Join(root, "js", "render.js"))
	assert.Contains(t, deps, filepath.Join(root, "js", "styles.css"))
	assert.Contains(t, deps, filepath.Join(root, "js", "util.js"))
}

func TestExtract_HTMLReferences(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	content := []byte(`<!doctype html>
<html><head>
<link rel="stylesheet" href="css/main.css">
<script src="js/app.js"></script>
</head><body>
<img src="images/hero.png">
<a href="bio.md">bio</a>
<a href="https://example.com">external</a>
</body></html>`)
	deps := e.Extract(filepath.Join(root, "index.html"), content)
	assert.Equal(t, []string{
		filepath.Join(root, "images", "hero.png"),
		filepath.Join(root, "js", "app.js"),
		filepath.Join(root, "css", "main.css"),
		filepath.Join(root, "bio.md"),
	}, deps)
}

func TestExtract_MalformedHTMLYieldsNoDeps(t *testing.T) {
	root := t.TempDir()
	e := New(root)

	deps := e.Extract(filepath.Join(root, "broken.html"), []byte("<<<><img src="))
	assert.Empty(t, deps)
}

func TestExtract_UnknownExtensionHasNoDeps(t *testing.T) {
	root := t.TempDir()
	e := New(root)
	assert.Nil(t, e.Extract(filepath.Join(root, "photo.jpg"), []byte("binary")))
}

func TestCountMarkdownRefs(t *testing.T) {
	links, images := CountMarkdownRefs([]byte(`![a](a.png) [b](b.md) ![c](c.jpg)`))
	assert.Equal(t, 1, links)
	assert.Equal(t, 2, images)
}

func TestFrontMatter(t *testing.T) {
	fm := FrontMatter([]byte("---\nrole: resume\ntitle: CV\n---\n\n# Resume\n"))
	require.NotNil(t, fm)
	assert.Equal(t, "resume", fm["role"])
	assert.Equal(t, "CV", fm["title"])

	assert.Nil(t, FrontMatter([]byte("# No front matter\n")))
	assert.Nil(t, FrontMatter([]byte("---\n: bad: [yaml\n---\n")))
	assert.Nil(t, FrontMatter([]byte("---\nrole: hero\nnever closed")))
}

func TestFrontMatter_ByteOrderMark(t *testing.T) {
	fm := FrontMatter([]byte("\xef\xbb\xbf---\nrole: hero\n---\n\n# Welcome\n"))
	require.NotNil(t, fm)
	assert.Equal(t, "hero", fm["role"])
}
