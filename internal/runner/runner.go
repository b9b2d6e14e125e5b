// Package runner generates many documents at once: a directory of JSON
// files mirrored into a directory of sources, or a list of named remote
// sources written under one output root.
package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/formatter"
	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/naming"
	"github.com/mcncl/jsontyper/internal/source"
	"golang.org/x/sync/errgroup"
)

// Job is one document to generate.
type Job struct {
	Source source.Spec
	Output string
	Root   string
}

// Result is the outcome of one Job.
type Result struct {
	Job      Job
	Bytes    int
	Duration time.Duration
	Err      error
}

// Report collects the results of a batch in job order.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of every failed job, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Job.Source.Name, res.Err))
	}
	return stderrors.Join(errs...)
}

// Runner writes generated sources for jobs.
type Runner struct {
	gen     *generator.Generator
	fetcher *source.Fetcher
	format  bool
	workers int
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds how many jobs run at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithFormatting toggles formatting of generated output.
func WithFormatting(enabled bool) Option {
	return func(r *Runner) {
		r.format = enabled
	}
}

// WithFetcher sets the fetcher used to load job sources.
func WithFetcher(f *source.Fetcher) Option {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithLogger sets the logger for per-job messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a Runner around gen. Formatting is on by default.
func New(gen *generator.Generator, opts ...Option) *Runner {
	r := &Runner{
		gen:     gen,
		fetcher: source.NewFetcher(),
		format:  true,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes jobs with a default formatting Runner limited to workers.
func Run(ctx context.Context, gen *generator.Generator, jobs []Job, workers int) Report {
	return New(gen, WithWorkers(workers)).Run(ctx, jobs)
}

// Run executes every job. A failing job is recorded in the report and never
// stops the others.
func (r *Runner) Run(ctx context.Context, jobs []Job) Report {
	results := make([]Result, len(jobs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)

	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{Job: job, Err: ctx.Err()}
			default:
				results[i] = r.RunJob(ctx, job)
			}
			return nil
		})
	}
	_ = eg.Wait()

	return Report{Results: results}
}

// RunJob loads, generates and writes one document.
func (r *Runner) RunJob(ctx context.Context, job Job) Result {
	start := time.Now()
	res := Result{Job: job}

	res.Bytes, res.Err = r.generate(ctx, job)
	res.Duration = time.Since(start)

	if res.Err != nil {
		r.logger.Error("generation failed",
			slog.String("source", job.Source.Name),
			slog.String("error", res.Err.Error()),
		)
		return res
	}
	r.logger.Info("generated",
		slog.String("source", job.Source.Name),
		slog.String("output", job.Output),
		slog.Int("bytes", res.Bytes),
		slog.Int64("duration_ms", res.Duration.Milliseconds()),
	)
	return res
}

func (r *Runner) generate(ctx context.Context, job Job) (int, error) {
	data, err := r.fetcher.Fetch(ctx, job.Source)
	if err != nil {
		return 0, err
	}

	code, err := r.gen.Generate(string(data), job.Root)
	if err != nil {
		return 0, err
	}

	if r.format {
		code, err = formatter.Format(r.gen.Language(), code)
		if err != nil {
			return 0, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return 0, errors.NewOutputError(fmt.Sprintf("creating directory for %s", job.Output), err)
	}
	if err := os.WriteFile(job.Output, []byte(code), 0o644); err != nil {
		return 0, errors.NewOutputError(fmt.Sprintf("writing %s", job.Output), err)
	}
	return len(code), nil
}

// PlanDirectory mirrors every .json file under src into dist. File names
// become snake_case with the extension of lang and the root type is named
// after the file.
func PlanDirectory(src, dist string, lang generator.Language) ([]Job, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("source directory %s", src), errors.ErrInvalidFilePath)
	}
	if !info.IsDir() {
		return nil, errors.NewInputError(fmt.Sprintf("%s is not a directory", src), errors.ErrInvalidFilePath)
	}

	var jobs []Job
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isJSON(path) {
			return nil
		}
		job, err := directoryJob(src, dist, path, lang)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("scanning %s", src), err)
	}
	return jobs, nil
}

func directoryJob(src, dist, path string, lang generator.Language) (Job, error) {
	rel, err := filepath.Rel(src, path)
	if err != nil {
		return Job{}, err
	}
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	return Job{
		Source: source.Spec{Name: filepath.ToSlash(rel), URL: path},
		Output: filepath.Join(dist, filepath.Dir(rel), naming.ToSnake(base)+lang.Extension()),
		Root:   models.NewTypeName(base).String(),
	}, nil
}

// PlanSources writes each source to <distRoot>/<snake name><ext>. Jobs are
// ordered by source name.
func PlanSources(distRoot string, specs []source.Spec, lang generator.Language) ([]Job, error) {
	if len(specs) == 0 {
		return nil, errors.NewConfigError("nothing to generate", errors.ErrNoSources)
	}

	jobs := make([]Job, 0, len(specs))
	seen := make(map[string]string, len(specs))
	for _, spec := range specs {
		file := naming.ToSnake(spec.Name) + lang.Extension()
		if other, ok := seen[file]; ok {
			return nil, errors.NewConfigError(fmt.Sprintf("sources %q and %q both write %s", other, spec.Name, file), nil)
		}
		seen[file] = spec.Name
		jobs = append(jobs, Job{
			Source: spec,
			Output: filepath.Join(distRoot, file),
			Root:   models.NewTypeName(spec.Name).String(),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Source.Name < jobs[j].Source.Name })
	return jobs, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
