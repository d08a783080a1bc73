package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/folio-dev/folio/core/cache"
	"github.com/folio-dev/folio/core/config"
	"github.com/folio-dev/folio/core/extract"
	"github.com/folio-dev/folio/core/graph"
	"github.com/folio-dev/folio/core/logger"
	"github.com/folio-dev/folio/core/models"
	"github.com/folio-dev/folio/core/roles"
	"github.com/folio-dev/folio/core/scheduler"
)

// State tracks where a run is in its lifecycle.
type State int

const (
	Idle State = iota
	Scanning
	Scheduling
	Processing
	Persisting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Scanning:
		return "Scanning"
	case Scheduling:
		return "Scheduling"
	case Processing:
		return "Processing"
	case Persisting:
		return "Persisting"
	default:
		return "Unknown"
	}
}

// ProcessFunc is the caller-supplied per-target computation. It receives the
// raw file content and must be idempotent given the same content; its result
// is what gets cached.
type ProcessFunc func(path string, content []byte) (string, error)

// Options control a single Run.
type Options struct {
	Incremental     bool
	ContinueOnError bool
	Workers         int
}

func DefaultOptions() Options {
	return Options{Incremental: true, ContinueOnError: true}
}

// TargetError records one target's failure without aborting the run.
type TargetError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary is what a run reports back to the CLI/UI layers.
type Summary struct {
	Candidates int               `json:"candidates"`
	Stale      int               `json:"stale"`
	Reused     int               `json:"reused"`
	Processed  int               `json:"processed"`
	Removed    []string          `json:"removed,omitempty"`
	Errors     []TargetError     `json:"errors,omitempty"`
	Reasons    map[string]string `json:"reasons,omitempty"`
	HitRate    float64           `json:"hit_rate"`
	Elapsed    time.Duration     `json:"elapsed"`
	Roles      *roles.Report     `json:"roles"`
}

var (
	// ErrAllTargetsFailed surfaces only when every target in a non-empty
	// queue failed.
	ErrAllTargetsFailed = errors.New("all targets failed")
	// ErrAborted surfaces when ContinueOnError is off and a target failed.
	ErrAborted = errors.New("processing aborted")
)

// Pipeline owns the graph, cache, and classifier state for a project and
// coordinates Scanning -> Scheduling -> Processing -> Persisting.
type Pipeline struct {
	root       string
	cfg        *config.Config
	graph      *graph.Graph
	store      *cache.Store
	content    *cache.ContentCache
	extractor  *extract.Extractor
	classifier *roles.Classifier
	scheduler  *scheduler.Scheduler
	records    map[string]*models.FileRecord

	stateMutex sync.Mutex
	state      State
}

// New builds a pipeline rooted at the given directory and loads the
// persisted cache. A corrupt cache file degrades to a cold run with a
// warning.
func New(root string, cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cachePath := cfg.CacheFile
	if !filepath.IsAbs(cachePath) {
		cachePath = filepath.Join(absRoot, cachePath)
	}
	store := cache.NewStore(cachePath)
	if err := store.Load(); err != nil {
		if errors.Is(err, cache.ErrCorrupt) {
			logger.Warn("Cache unreadable, starting cold: %v", err)
		} else {
			return nil, err
		}
	}

	content, err := cache.NewContentCache(cfg.ContentCacheSize)
	if err != nil {
		return nil, err
	}

	overrides := make(map[models.Role]roles.Constraint, len(cfg.Roles))
	for name, constraint := range cfg.Roles {
		role := models.Role(strings.ToLower(name))
		if !role.Valid() {
			logger.Warn("Ignoring constraint for unknown role %q", name)
			continue
		}
		overrides[role] = roles.Constraint{
			MaxFiles:          constraint.MaxFiles,
			AllowedExtensions: constraint.AllowedExtensions,
		}
	}

	g := graph.New()
	return &Pipeline{
		root:       absRoot,
		cfg:        cfg,
		graph:      g,
		store:      store,
		content:    content,
		extractor:  extract.New(absRoot),
		classifier: roles.NewClassifier(overrides),
		scheduler:  scheduler.New(g, store, scheduler.DefaultTargetKey),
		records:    make(map[string]*models.FileRecord),
	}, nil
}

// Store exposes the cache store for status reporting and explicit clears.
func (p *Pipeline) Store() *cache.Store {
	return p.store
}

// Record returns the tracked record for a path, if the file has been
// scanned this run.
func (p *Pipeline) Record(path string) (*models.FileRecord, bool) {
	record, exists := p.records[p.absolute(path)]
	return record, exists
}

// ClearCache drops every cached result: the persisted store, its file on
// disk, and the in-memory content cache. The next run is fully cold.
func (p *Pipeline) ClearCache() error {
	p.content.Purge()
	return p.store.Reset()
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	return p.state
}

// PinRole fixes a file's role so the classifier never reassigns it.
func (p *Pipeline) PinRole(path string, role models.Role) {
	path = p.absolute(path)
	record, exists := p.records[path]
	if !exists {
		record = &models.FileRecord{Path: path}
		p.records[path] = record
	}
	record.Role = role
	record.Pinned = true
}

// Remove drops a file from tracking: its record, graph node, role
// assignment, and cache entry. Records are never garbage-collected
// implicitly; this is the explicit path.
func (p *Pipeline) Remove(path string) {
	path = p.absolute(path)
	delete(p.records, path)
	p.graph.RemoveNode(path)
	p.classifier.Forget(path)
	p.store.Remove(scheduler.DefaultTargetKey(path))
}

// Run executes one full pipeline pass over the candidate files.
func (p *Pipeline) Run(files []string, processFn ProcessFunc, opts Options) (*Summary, error) {
	return p.run(files, processFn, opts, false)
}

// Preview scans and schedules without processing or persisting, for status
// reporting.
func (p *Pipeline) Preview(files []string) (*Summary, error) {
	return p.run(files, nil, DefaultOptions(), true)
}

func (p *Pipeline) run(files []string, processFn ProcessFunc, opts Options, dryRun bool) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}
	defer func() {
		summary.Elapsed = time.Since(start)
		p.transition(Idle)
	}()

	p.transition(Scanning)
	candidates := p.normalize(files)
	summary.Candidates = len(candidates)

	known := make(map[string]*cache.Fingerprint, len(candidates))
	var live []string
	for _, path := range candidates {
		fp, err := p.scan(path)
		if err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				logger.Debug("Pipeline: %s vanished, dropping from candidates", path)
				summary.Removed = append(summary.Removed, path)
				continue
			}
			summary.Errors = append(summary.Errors, TargetError{Path: path, Reason: err.Error()})
			logger.Warn("Pipeline: failed to scan %s: %v", path, err)
			continue
		}
		live = append(live, path)
		known[path] = fp
	}

	p.transition(Scheduling)
	var plan *scheduler.Plan
	var err error
	if opts.Incremental {
		plan, err = p.scheduler.Plan(live, known)
	} else {
		plan, err = p.scheduler.Full(live, known)
	}
	if err != nil {
		return summary, fmt.Errorf("scheduling failed: %w", err)
	}
	summary.Stale = len(plan.Stale)
	summary.Reused = len(plan.Reused)
	summary.Reasons = plan.Reasons
	summary.Removed = append(summary.Removed, plan.Removed...)
	if total := summary.Stale + summary.Reused; total > 0 {
		summary.HitRate = float64(summary.Reused) / float64(total) * 100
	}

	var results map[string]string
	var aborted bool
	if !dryRun && processFn != nil && len(plan.Stale) > 0 {
		p.transition(Processing)
		var failures []TargetError
		results, failures, aborted = p.processQueue(plan.Stale, processFn, opts)
		summary.Errors = append(summary.Errors, failures...)
		summary.Processed = len(results)

		p.transition(Persisting)
		computedAt := time.Now()
		for _, path := range plan.Stale {
			result, ok := results[path]
			if !ok {
				continue
			}
			p.store.Put(scheduler.DefaultTargetKey(path), &cache.Entry{
				Fingerprint: known[path].Hash,
				ContentHash: known[path].ContentHash,
				ComputedAt:  computedAt,
				Result:      result,
			})
		}
		if err := p.store.Save(); err != nil {
			logger.Warn("Pipeline: failed to persist cache: %v", err)
		}
	}

	summary.Roles = p.classifier.Report()

	if aborted {
		return summary, fmt.Errorf("%w after %d failures", ErrAborted, len(summary.Errors))
	}
	if !dryRun && processFn != nil && len(plan.Stale) > 0 && len(results) == 0 {
		return summary, fmt.Errorf("%d targets: %w", len(plan.Stale), ErrAllTargetsFailed)
	}
	return summary, nil
}

// scan refreshes one file's record: fingerprint, content metadata,
// dependency edges, and role.
func (p *Pipeline) scan(path string) (*cache.Fingerprint, error) {
	fp, err := cache.Compute(path)
	if err != nil {
		return nil, err
	}

	record, exists := p.records[path]
	if !exists {
		record = &models.FileRecord{Path: path}
		p.records[path] = record
	}
	if rel, err := filepath.Rel(p.root, path); err == nil {
		record.RelPath = rel
	}
	record.Extension = filepath.Ext(path)
	record.SizeBytes = fp.Size
	record.ModifiedAt = fp.ModTime
	record.Fingerprint = fp.Hash

	content, err := p.content.Read(path, fp.Hash)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, err
		}
		// extraction is best-effort; an unreadable body just means no
		// dependencies and no content heuristics
		logger.Debug("Pipeline: could not read %s: %v", path, err)
		content = nil
	}

	deps := p.extractor.Extract(path, content)
	record.Dependencies = deps
	p.graph.SetDependencies(path, deps)

	p.refreshMetadata(record, content)

	if !record.Pinned {
		record.Role = p.classifier.Classify(record, content)
	}
	p.classifier.Record(record)
	return fp, nil
}

var textMetadataExts = map[string]bool{
	".md": true, ".markdown": true, ".txt": true, ".html": true, ".htm": true,
}

func (p *Pipeline) refreshMetadata(record *models.FileRecord, content []byte) {
	ext := strings.ToLower(record.Extension)
	if !textMetadataExts[ext] || len(content) == 0 {
		return
	}

	record.Metadata.WordCount = len(strings.Fields(string(content)))
	record.Metadata.LinkCount, record.Metadata.ImageCount = extract.CountMarkdownRefs(content)

	if fm := extract.FrontMatter(content); fm != nil {
		record.Metadata.FrontMatter = fm
		if role := models.Role(strings.ToLower(fm["role"])); role.Valid() {
			record.Role = role
			record.Pinned = true
		}
	}
}

func (p *Pipeline) normalize(files []string) []string {
	seen := make(map[string]bool, len(files))
	normalized := make([]string, 0, len(files))
	for _, file := range files {
		path := p.absolute(file)
		if seen[path] {
			continue
		}
		seen[path] = true
		normalized = append(normalized, path)
	}
	return normalized
}

func (p *Pipeline) absolute(file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(p.root, file)
}

func (p *Pipeline) transition(next State) {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	if p.state != next {
		logger.Debug("Pipeline: %s -> %s", p.state, next)
		p.state = next
	}
}
