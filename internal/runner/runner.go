// Package runner evaluates batches of input pairs against a decision
// procedure: either the built-in matcher or a predicate resolved from
// evaluated source. Cases come from yaml files, run in parallel with a
// bounded worker count, and can optionally be journaled.
package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"skipmatch/internal/history"
	"skipmatch/internal/logging"
)

// Predicate is any two-string decision procedure the runner can drive.
type Predicate func(ctx context.Context, left, right string) (bool, error)

// Case is one input pair, optionally with an expected verdict.
type Case struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
	// Want, when set, turns the case into an assertion.
	Want *bool `yaml:"want,omitempty"`
}

// caseFile is the yaml document layout.
type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// LoadCases reads a yaml case file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	var cf caseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse case file: %w", err)
	}
	if len(cf.Cases) == 0 {
		return nil, fmt.Errorf("case file %s defines no cases", path)
	}
	return cf.Cases, nil
}

// Result is the outcome of one case.
type Result struct {
	ID         string
	Case       Case
	Equivalent bool
	Err        error
	Duration   time.Duration
	// Mismatch is set when Want disagrees with the verdict or the case
	// errored while an expectation was present.
	Mismatch bool
}

// Runner drives a Predicate over case batches.
type Runner struct {
	pred   Predicate
	limit  int
	window int
	source string
	store  *history.Store
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds parallel case evaluation. Values below 1 are
// clamped to 1.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.limit = n
	}
}

// WithHistory journals every result to store. The runner does not own the
// store; the caller closes it.
func WithHistory(store *history.Store, window int) Option {
	return func(r *Runner) {
		r.store = store
		r.window = window
	}
}

// WithSource names the decision procedure in results and the journal.
func WithSource(name string) Option {
	return func(r *Runner) { r.source = name }
}

// New creates a Runner for the given predicate.
func New(pred Predicate, opts ...Option) *Runner {
	r := &Runner{pred: pred, limit: 4, source: "matcher"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every case and returns results in input order. Per-case
// failures land in Result.Err; Run itself only fails when the context is
// canceled before all cases finish.
func (r *Runner) Run(ctx context.Context, cases []Case) ([]Result, error) {
	logging.Runner("running %d case(s) with %s, concurrency %d", len(cases), r.source, r.limit)

	results := make([]Result, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for idx, c := range cases {
		idx, c := idx, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			got, err := r.pred(gctx, c.Left, c.Right)
			res := Result{
				ID:         uuid.NewString(),
				Case:       c,
				Equivalent: got,
				Err:        err,
				Duration:   time.Since(start),
			}
			if c.Want != nil {
				res.Mismatch = err != nil || *c.Want != got
			}
			results[idx] = res

			if r.store != nil && err == nil {
				rec := history.Check{
					ID:         res.ID,
					Left:       c.Left,
					Right:      c.Right,
					Equivalent: got,
					Window:     r.window,
					Source:     r.source,
					Duration:   res.Duration,
				}
				if recErr := r.store.Record(rec); recErr != nil {
					logging.RunnerDebug("journal write failed: %v", recErr)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}
	return results, nil
}

// Summary condenses a result slice for reporting.
type Summary struct {
	Total      int
	Equivalent int
	Errors     int
	Mismatches int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	s.Total = len(results)
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Errors++
		case r.Equivalent:
			s.Equivalent++
		}
		if r.Mismatch {
			s.Mismatches++
		}
	}
	return s
}
