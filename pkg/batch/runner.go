package batch

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/kvarta-studio/kontra/pkg/contract"
	"github.com/kvarta-studio/kontra/pkg/lint"
	"github.com/kvarta-studio/kontra/pkg/report"
	"github.com/kvarta-studio/kontra/pkg/schema"
)

// Options tunes a batch run.
type Options struct {
	Workers int     // 0 means GOMAXPROCS
	Filter  *Filter // nil matches every contract
}

// Runner fans contract files out to linter workers and aggregates the
// results. The linter is stateless across files, so one shared instance
// serves all workers.
type Runner struct {
	linter *lint.Linter
	schema *schema.Schema
	opts   Options
}

// NewRunner builds a runner around a shared linter.
func NewRunner(l *lint.Linter, sch *schema.Schema, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{linter: l, schema: sch, opts: opts}
}

// identity is the cross-file uniqueness key.
type identity struct {
	moduleID string
	abbr     string
}

// outcome pairs a lint result with the identity the worker decoded, so
// the aggregation pass can run cross-file checks without re-reading.
type outcome struct {
	result *lint.Result
	id     identity
}

// Run discovers, filters and lints the given paths concurrently, then
// aggregates one report. Worker scheduling is nondeterministic, but
// results are sorted by path and cross-file findings are appended in
// path order, so the report is identical run to run. Per-file problems
// become findings; only run-level failures (unreadable roots,
// cancellation) surface as errors.
func (r *Runner) Run(ctx context.Context, paths []string) (*report.Report, error) {
	files, err := Discover(paths)
	if err != nil {
		return nil, err
	}

	inCh := make(chan string, r.opts.Workers*2)
	outCh := make(chan outcome, r.opts.Workers*2)

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range inCh {
				if o, ok := r.lintOne(path); ok {
					outCh <- o
				}
			}
		}()
	}

	go func() {
		defer close(inCh)
		for _, f := range files {
			select {
			case inCh <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	var outcomes []outcome
	for o := range outCh {
		outcomes = append(outcomes, o)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch run: %w", err)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].result.File < outcomes[j].result.File
	})
	markDuplicateIdentities(outcomes)

	results := make([]*lint.Result, len(outcomes))
	for i, o := range outcomes {
		for j := range o.result.Findings {
			o.result.Findings[j].File = o.result.File
		}
		results[i] = o.result
	}
	return report.New(results, r.schema.Version), nil
}

// lintOne reads, filters and lints a single file. The second return is
// false when the filter rejects the contract, which drops the file from
// the report entirely.
func (r *Runner) lintOne(path string) (outcome, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		res := &lint.Result{File: path}
		res.AddFinding(lint.NewFinding(lint.SeverityError, lint.CodeDocumentParse, "$",
			"read contract: %v", err))
		return outcome{result: res}, true
	}

	var id identity
	c, decodeErr := contract.Decode(data)
	if decodeErr == nil {
		id = identity{moduleID: c.ModuleID, abbr: c.Abbr}
		if ok, ferr := r.opts.Filter.Match(c); ferr == nil && !ok {
			return outcome{}, false
		}
	}

	return outcome{result: r.linter.Lint(path, data), id: id}, true
}

// markDuplicateIdentities appends an error to every file that shares a
// module_id/module_abbr pair with another file in the batch. Both sides
// of a collision are flagged; there is no "first wins".
func markDuplicateIdentities(outcomes []outcome) {
	byID := make(map[identity][]int)
	for i, o := range outcomes {
		if o.id.moduleID == "" || o.id.abbr == "" {
			continue
		}
		byID[o.id] = append(byID[o.id], i)
	}

	for id, indices := range byID {
		if len(indices) < 2 {
			continue
		}
		for _, i := range indices {
			others := make([]string, 0, len(indices)-1)
			for _, j := range indices {
				if j != i {
					others = append(others, outcomes[j].result.File)
				}
			}
			outcomes[i].result.AddFinding(lint.NewFinding(lint.SeverityError, lint.CodeDupIdentity,
				"$.module_id", "module identity %s/%s also declared by %v",
				id.moduleID, id.abbr, others))
		}
	}
}
