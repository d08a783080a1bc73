package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/folio/core/config"
	"github.com/folio-dev/folio/core/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func touch(t *testing.T, path string) {
	t.Helper()
	later := time.Now().Add(5 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))
}

func echoProcessor(path string, content []byte) (string, error) {
	return "out:" + filepath.Base(path), nil
}

func newTestPipeline(t *testing.T, root string) *Pipeline {
	t.Helper()
	p, err := New(root, config.Default())
	require.NoError(t, err)
	return p
}

func TestRun_ColdThenWarmThenInvalidated(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	bio := writeFile(t, root, "bio.md", "About me\n\n![me](photo.jpg)")
	photo := writeFile(t, root, "photo.jpg", "jpegbytes-v1")
	files := []string{hero, bio, photo}

	p := newTestPipeline(t, root)

	summary, err := p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Candidates)
	assert.Equal(t, 3, summary.Stale)
	assert.Equal(t, 0, summary.Reused)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, float64(0), summary.HitRate)

	summary, err = p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Stale)
	assert.Equal(t, 3, summary.Reused)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, float64(100), summary.HitRate)

	// modifying the photo invalidates it and its dependent bio
	writeFile(t, root, "photo.jpg", "jpegbytes-v2")
	summary, err = p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Stale)
	assert.Equal(t, 1, summary.Reused)
	assert.Contains(t, summary.Reasons, photo)
	assert.Contains(t, summary.Reasons, bio)
}

func TestRun_TouchReprocessesOnlyTheTouchedFile(t *testing.T) {
	root := t.TempDir()
	bio := writeFile(t, root, "bio.md", "About me\n\n![me](photo.jpg)")
	photo := writeFile(t, root, "photo.jpg", "jpegbytes")
	files := []string{bio, photo}

	p := newTestPipeline(t, root)
	_, err := p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)

	touch(t, photo)
	summary, err := p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stale)
	assert.Equal(t, 1, summary.Reused)
	assert.Contains(t, summary.Reasons, photo)
	assert.NotContains(t, summary.Reasons, bio)
}

func TestRun_PersistsAcrossInstances(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	bio := writeFile(t, root, "bio.md", "About me")
	files := []string{hero, bio}

	first := newTestPipeline(t, root)
	_, err := first.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)

	second := newTestPipeline(t, root)
	summary, err := second.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Stale)
	assert.Equal(t, 2, summary.Reused)
}

func TestRun_CorruptCacheFallsBackToColdRun(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	writeFile(t, root, filepath.Join(".folio", "cache.json"), "{broken")

	p := newTestPipeline(t, root)
	summary, err := p.Run([]string{hero}, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stale)
}

func TestRun_NonIncrementalReprocessesEverything(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	files := []string{hero}

	p := newTestPipeline(t, root)
	_, err := p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Incremental = false
	summary, err := p.Run(files, echoProcessor, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stale)
	assert.Equal(t, 0, summary.Reused)
	assert.Equal(t, "full rebuild requested", summary.Reasons[hero])
}

func TestRun_RemovedFileReported(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	ghost := filepath.Join(root, "gone.md")

	p := newTestPipeline(t, root)
	summary, err := p.Run([]string{hero, ghost}, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{ghost}, summary.Removed)
	assert.Equal(t, 1, summary.Processed)
}

func TestRun_AllFailuresSurfaceError(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	bio := writeFile(t, root, "bio.md", "About me")

	p := newTestPipeline(t, root)
	failing := func(path string, content []byte) (string, error) {
		return "", fmt.Errorf("renderer exploded")
	}
	summary, err := p.Run([]string{hero, bio}, failing, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllTargetsFailed)
	assert.Len(t, summary.Errors, 2)
	assert.Equal(t, 0, summary.Processed)
}

func TestRun_PartialFailureContinues(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	bio := writeFile(t, root, "bio.md", "About me")

	p := newTestPipeline(t, root)
	flaky := func(path string, content []byte) (string, error) {
		if filepath.Base(path) == "bio.md" {
			return "", errors.New("bad input")
		}
		return "ok", nil
	}
	summary, err := p.Run([]string{hero, bio}, flaky, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, bio, summary.Errors[0].Path)

	// the failed target stays stale on the next run, the success is reused
	summary, err = p.Run([]string{hero, bio}, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stale)
	assert.Equal(t, 1, summary.Reused)
}

func TestRun_FailFastAborts(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "a.md", "first")
	b := writeFile(t, root, "b.md", "second")

	p := newTestPipeline(t, root)
	opts := DefaultOptions()
	opts.ContinueOnError = false
	opts.Workers = 1
	failing := func(path string, content []byte) (string, error) {
		return "", errors.New("boom")
	}
	_, err := p.Run([]string{a, b}, failing, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestRun_FrontMatterPinsRole(t *testing.T) {
	root := t.TempDir()
	pinned := writeFile(t, root, "weird-name.md", "---\nrole: resume\n---\n\n# My resume\n")

	p := newTestPipeline(t, root)
	_, err := p.Run([]string{pinned}, echoProcessor, DefaultOptions())
	require.NoError(t, err)

	record, exists := p.Record(pinned)
	require.True(t, exists)
	assert.Equal(t, models.RoleResume, record.Role)
	assert.True(t, record.Pinned)
}

func TestRun_MetadataRefreshed(t *testing.T) {
	root := t.TempDir()
	bio := writeFile(t, root, "bio.md", "Hello there world ![pic](photo.jpg) [link](index.md)")

	p := newTestPipeline(t, root)
	_, err := p.Run([]string{bio}, echoProcessor, DefaultOptions())
	require.NoError(t, err)

	record, exists := p.Record(bio)
	require.True(t, exists)
	assert.Equal(t, 1, record.Metadata.LinkCount)
	assert.Equal(t, 1, record.Metadata.ImageCount)
	assert.Greater(t, record.Metadata.WordCount, 0)
}

func TestPreview_DoesNotProcessOrPersist(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")

	p := newTestPipeline(t, root)
	summary, err := p.Preview([]string{hero})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stale)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, p.Store().Len())

	_, err = os.Stat(p.Store().Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRemove_DropsAllTracking(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")

	p := newTestPipeline(t, root)
	_, err := p.Run([]string{hero}, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, p.Store().Len())

	p.Remove(hero)
	assert.Equal(t, 0, p.Store().Len())
	_, exists := p.Record(hero)
	assert.False(t, exists)
}

func TestClearCache_ForcesColdRun(t *testing.T) {
	root := t.TempDir()
	hero := writeFile(t, root, "index.md", "# Welcome")
	bio := writeFile(t, root, "bio.md", "About me")
	files := []string{hero, bio}

	p := newTestPipeline(t, root)
	_, err := p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, p.Store().Len())

	require.NoError(t, p.ClearCache())
	assert.Equal(t, 0, p.Store().Len())
	_, err = os.Stat(p.Store().Path())
	assert.True(t, os.IsNotExist(err))

	summary, err := p.Run(files, echoProcessor, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Stale)
	assert.Equal(t, 0, summary.Reused)
}

func TestPinRole_SurvivesRescan(t *testing.T) {
	root := t.TempDir()
	photo := writeFile(t, root, "photo.jpg", "jpegbytes")

	p := newTestPipeline(t, root)
	p.PinRole(photo, models.RoleProjects)

	_, err := p.Run([]string{photo}, echoProcessor, DefaultOptions())
	require.NoError(t, err)

	record, exists := p.Record(photo)
	require.True(t, exists)
	assert.Equal(t, models.RoleProjects, record.Role)
}

func TestRun_DependencyOrderRespected(t *testing.T) {
	root := t.TempDir()
	photo := writeFile(t, root, "photo.jpg", "jpegbytes")
	bio := writeFile(t, root, "bio.md", "![me](photo.jpg)")

	p := newTestPipeline(t, root)
	opts := DefaultOptions()
	opts.Workers = 1

	var order []string
	recorder := func(path string, content []byte) (string, error) {
		order = append(order, filepath.Base(path))
		return "ok", nil
	}
	_, err := p.Run([]string{bio, photo}, recorder, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"photo.jpg", "bio.md"}, order)
}
