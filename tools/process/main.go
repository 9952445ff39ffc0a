// Tool to rebuild the patched tree: edits/*.psd are flattened and converted
// to .paa, raw/ is mirrored into patched/, and the converted textures plus
// any edited .p3d models are laid over it.
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/1siamBot/modkit/engine/batch"
	"github.com/1siamBot/modkit/engine/cli"
	"github.com/1siamBot/modkit/engine/config"
	"github.com/1siamBot/modkit/engine/mirror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cli.Execute(cli.NewToolCommand("process", "Convert edits and rebuild patched/ from raw/", "", run))
}

type pipeline struct {
	fs      afero.Fs
	log     logrus.FieldLogger
	psd2png *batch.Runner
	png2paa *batch.Runner

	raw     string
	patched string
	edits   string
	temp    string
}

func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	fs := afero.NewOsFs()
	p := &pipeline{
		fs:      fs,
		log:     log,
		psd2png: batch.NewRunner(batch.NewMagick(cfg.Tools.Magick), fs, cfg.Tools.Workers, log),
		png2paa: batch.NewRunner(batch.NewPal2Pac(cfg.Tools.Pal2Pac), fs, cfg.Tools.Workers, log),
		raw:     cfg.Path(cfg.Paths.Raw),
		patched: cfg.Path(cfg.Paths.Patched),
		edits:   cfg.Path(cfg.Paths.Edits),
		temp:    cfg.Path(cfg.Paths.Temp),
	}
	return p.run(ctx)
}

func (p *pipeline) run(ctx context.Context) error {
	for _, dir := range []string{p.temp, p.patched} {
		if err := p.fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
	}

	pngDir := filepath.Join(p.temp, "png")
	paaDir := filepath.Join(p.temp, "paa")
	converted, err := p.psd2png.ConvertTree(ctx, p.edits, pngDir, "*.psd", ".png", batch.ReplaceExisting)
	if err != nil {
		return err
	}
	packed, err := p.png2paa.ConvertTree(ctx, pngDir, paaDir, "*.png", ".paa", batch.ReplaceExisting)
	if err != nil {
		return err
	}

	st, err := mirror.Sync(p.fs, p.raw, p.patched)
	if err != nil {
		return err
	}
	textures, err := mirror.Overlay(p.fs, paaDir, p.patched, "")
	if err != nil {
		return err
	}
	models, err := mirror.Overlay(p.fs, p.edits, p.patched, "*.p3d")
	if err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"psd_failed": batch.Failed(converted),
		"paa_failed": batch.Failed(packed),
		"copied":     st.Copied,
		"removed":    st.Removed,
		"textures":   textures,
		"models":     models,
	}).Info("patched tree rebuilt")
	fmt.Printf("Patched %s: %d files synced, %d textures, %d models\n", p.patched, st.Copied, textures, models)
	return nil
}
