// Package archive unpacks PBO archives with an external extractor and merges
// their content into one destination tree.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/1siamBot/modkit/engine/mirror"
	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

var pboPattern = glob.MustCompile("*.pbo")

// RunFunc runs an external program to completion
type RunFunc func(ctx context.Context, exe string, args ...string) error

// Exec runs exe and folds its output into the error on failure
func Exec(ctx context.Context, exe string, args ...string) error {
	out, err := exec.CommandContext(ctx, exe, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(exe), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Result is the outcome for one archive
type Result struct {
	Archive string
	Err     error
}

// Extractor drives ExtractPbo over a tree of archives
type Extractor struct {
	Exe     string
	Fs      afero.Fs
	Workers int
	Log     logrus.FieldLogger
	Run     RunFunc
}

// NewExtractor creates an extractor running exe for real
func NewExtractor(exe string, fs afero.Fs, workers int, log logrus.FieldLogger) *Extractor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if workers < 1 {
		workers = 1
	}
	return &Extractor{Exe: exe, Fs: fs, Workers: workers, Log: log, Run: Exec}
}

// Find lists every .pbo below src in walk order
func (e *Extractor) Find(src string) ([]string, error) {
	var found []string
	err := afero.Walk(e.Fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && pboPattern.Match(info.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", src, err)
	}
	return found, nil
}

// ExtractAll extracts every archive below src into dest. The error reports
// only a walk that could not complete; per-archive failures are in the results.
func (e *Extractor) ExtractAll(ctx context.Context, src, dest string) ([]Result, error) {
	archives, err := e.Find(src)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(archives))
	var g errgroup.Group
	g.SetLimit(e.Workers)
	for i, pbo := range archives {
		g.Go(func() error {
			results[i] = Result{Archive: pbo, Err: e.Extract(ctx, pbo, dest)}
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.Log.WithFields(logrus.Fields{"archives": len(results), "failed": failed}).Info("extraction finished")
	return results, nil
}

// Extract unpacks one archive. ExtractPbo -P writes next to the archive into
// a folder named like it without the extension; each first-level directory of
// that folder is merged into dest and the folder is removed afterwards.
func (e *Extractor) Extract(ctx context.Context, pbo, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := e.Log.WithField("archive", pbo)
	stage := strings.TrimSuffix(pbo, filepath.Ext(pbo))

	if err := e.Fs.RemoveAll(stage); err != nil {
		return fmt.Errorf("clear stale %s: %w", stage, err)
	}
	if err := e.Run(ctx, e.Exe, "-P", pbo); err != nil {
		log.WithError(err).Warn("extraction failed, skipping archive")
		e.Fs.RemoveAll(stage)
		return err
	}

	if err := e.merge(stage, dest); err != nil {
		log.WithError(err).Warn("merging extracted files failed")
		e.Fs.RemoveAll(stage)
		return err
	}
	if err := e.Fs.RemoveAll(stage); err != nil {
		return fmt.Errorf("remove %s: %w", stage, err)
	}
	log.Debug("extracted")
	return nil
}

func (e *Extractor) merge(stage, dest string) error {
	entries, err := afero.ReadDir(e.Fs, stage)
	if err != nil {
		return fmt.Errorf("read %s: %w", stage, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		from := filepath.Join(stage, entry.Name())
		if _, err := mirror.CopyTree(e.Fs, from, filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
