package pipeline

import (
	"fmt"

	"github.com/folio-dev/folio/core/logger"
)

type outcome struct {
	path   string
	result string
	err    error
}

// processQueue runs the stale queue through a bounded worker pool. A target
// starts only after every in-queue dependency has completed, so independent
// targets run in parallel without reordering dependent work. Failures are
// recorded and the queue keeps draining unless ContinueOnError is off.
func (p *Pipeline) processQueue(queue []string, fn ProcessFunc, opts Options) (map[string]string, []TargetError, bool) {
	workers := opts.Workers
	if workers <= 0 {
		workers = p.cfg.Workers
	}
	if workers <= 0 {
		workers = 10
	}

	inQueue := make(map[string]bool, len(queue))
	position := make(map[string]int, len(queue))
	for i, path := range queue {
		inQueue[path] = true
		position[path] = i
	}

	indegree := make(map[string]int, len(queue))
	consumers := make(map[string][]string)
	for _, target := range queue {
		for _, dep := range p.graph.DependenciesOf(target) {
			if inQueue[dep] && dep != target {
				indegree[target]++
				consumers[dep] = append(consumers[dep], target)
			}
		}
	}

	pending := make(map[string]bool, len(queue))
	for _, path := range queue {
		pending[path] = true
	}

	pickNext := func(requireReady bool) string {
		best := ""
		for path := range pending {
			if requireReady && indegree[path] > 0 {
				continue
			}
			if best == "" || position[path] < position[best] {
				best = path
			}
		}
		return best
	}

	results := make(map[string]string, len(queue))
	var failures []TargetError
	aborted := false
	inflight := 0
	done := make(chan outcome, workers)

	for {
		if !aborted {
			for inflight < workers {
				next := pickNext(true)
				if next == "" && inflight == 0 && len(pending) > 0 {
					// dependency cycle: nothing is ready, release the
					// earliest member so the batch still drains
					next = pickNext(false)
					logger.Debug("Pipeline: releasing cycle member %s", next)
				}
				if next == "" {
					break
				}
				delete(pending, next)
				inflight++
				go p.processTarget(next, fn, done)
			}
		}
		if inflight == 0 {
			break
		}

		out := <-done
		inflight--
		if out.err != nil {
			failures = append(failures, TargetError{Path: out.path, Reason: out.err.Error()})
			logger.Error("Pipeline: processing failed for %s: %v", out.path, out.err)
			if !opts.ContinueOnError {
				aborted = true
			}
		} else {
			results[out.path] = out.result
		}
		for _, consumer := range consumers[out.path] {
			indegree[consumer]--
		}
	}
	return results, failures, aborted
}

func (p *Pipeline) processTarget(path string, fn ProcessFunc, done chan<- outcome) {
	content, err := p.content.Read(path, p.records[path].Fingerprint)
	if err != nil {
		done <- outcome{path: path, err: fmt.Errorf("read failed: %w", err)}
		return
	}
	result, err := fn(path, content)
	done <- outcome{path: path, result: result, err: err}
}
