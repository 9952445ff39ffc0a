package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ExistingPolicy decides what happens to an output that is already there
type ExistingPolicy int

const (
	// SkipExisting leaves the output alone and plans no job
	SkipExisting ExistingPolicy = iota
	// ReplaceExisting deletes the output and converts again
	ReplaceExisting
)

// Job is one conversion
type Job struct {
	Src string
	Dst string
}

// Result is the outcome of one job. Err is nil on success.
type Result struct {
	Job
	Err error
}

// Failed counts results with an error
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Plan walks inDir for files whose base name matches pattern (e.g. "*.paa")
// and maps each to outDir, keeping the relative directory and swapping the
// extension for toExt. The error is only for a walk that could not complete.
func Plan(fs afero.Fs, inDir, outDir, pattern, toExt string, policy ExistingPolicy) ([]Job, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	var jobs []Job
	err = afero.Walk(fs, inDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !g.Match(info.Name()) {
			return nil
		}
		rel, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+toExt)

		exists, err := afero.Exists(fs, dst)
		if err != nil {
			return err
		}
		if exists {
			if policy == SkipExisting {
				return nil
			}
			if err := fs.Remove(dst); err != nil {
				return fmt.Errorf("remove stale %s: %w", dst, err)
			}
		}
		jobs = append(jobs, Job{Src: path, Dst: dst})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", inDir, err)
	}
	return jobs, nil
}

// Runner executes jobs with at most Workers conversions in flight
type Runner struct {
	Converter Converter
	Fs        afero.Fs
	Workers   int
	Log       logrus.FieldLogger
}

// NewRunner creates a runner. A nil log discards.
func NewRunner(conv Converter, fs afero.Fs, workers int, log logrus.FieldLogger) *Runner {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{Converter: conv, Fs: fs, Workers: workers, Log: log}
}

// Run converts every job and returns one Result per job, in job order.
// Cancelling ctx stops jobs that have not started yet.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(r.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = Result{Job: job, Err: r.convert(ctx, job)}
			return nil
		})
	}
	g.Wait()

	r.Log.WithFields(logrus.Fields{
		"jobs":   len(jobs),
		"failed": Failed(results),
	}).Info("batch finished")
	return results
}

// ConvertTree plans the conversions of inDir into outDir and runs them
func (r *Runner) ConvertTree(ctx context.Context, inDir, outDir, pattern, toExt string, policy ExistingPolicy) ([]Result, error) {
	jobs, err := Plan(r.Fs, inDir, outDir, pattern, toExt, policy)
	if err != nil {
		return nil, err
	}
	r.Log.WithFields(logrus.Fields{"from": inDir, "to": outDir, "jobs": len(jobs)}).Info("converting")
	return r.Run(ctx, jobs), nil
}

func (r *Runner) convert(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := r.Log.WithFields(logrus.Fields{"src": job.Src, "dst": job.Dst})
	if err := r.Fs.MkdirAll(filepath.Dir(job.Dst), 0o755); err != nil {
		log.WithError(err).Warn("cannot create output dir")
		return err
	}
	if err := r.Converter.Convert(ctx, job.Src, job.Dst); err != nil {
		log.WithError(err).Warn("conversion failed")
		return err
	}
	log.Debug("converted")
	return nil
}
