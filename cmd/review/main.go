package main

import (
	"context"
	"fmt"

	"github.com/1siamBot/modkit/engine/cli"
	"github.com/1siamBot/modkit/engine/config"
	"github.com/1siamBot/modkit/engine/imageset"
	"github.com/1siamBot/modkit/engine/render"
	"github.com/1siamBot/modkit/engine/session"
	"github.com/1siamBot/modkit/engine/tags"
	"github.com/1siamBot/modkit/engine/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cli.Execute(cli.NewToolCommand("review", "Review and tag extracted textures",
		`Walks review.image_root and shows every png/jpg for tagging.

Keys: left/right navigate, 1/2 toggle the copy/skip tags (see review.tag_keys),
r/g/b/a isolate a channel, m switches grid and single view, s toggles skipping
tagged images, z undoes the last tag change, q saves and quits.`, run))
}

func run(_ context.Context, cfg config.Config, log logrus.FieldLogger) error {
	fs := afero.NewOsFs()
	root := cfg.Path(cfg.Review.ImageRoot)

	set, err := imageset.Build(fs, root)
	if err != nil {
		return err
	}
	km, err := session.NewKeymap(cfg.Review.TagKeys)
	if err != nil {
		return err
	}
	store := tags.Load(fs, cfg.Path(cfg.Review.TagsFile), log)

	s, err := session.New(set, store, render.NewPlanner(), imageset.NewLoader(fs, root), session.Options{
		DisplayMode: cfg.DisplayMode(),
		SkipTagged:  cfg.Review.SkipTagged,
	}, log)
	if err != nil {
		return fmt.Errorf("%s: %w", root, err)
	}
	log.WithFields(logrus.Fields{"root": root, "images": set.Len(), "tagged": store.Len()}).Info("review started")

	v, err := ui.NewViewer(s, km, cfg.Review.ResizeSettleTicks, log)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(cfg.Review.WindowWidth, cfg.Review.WindowHeight)
	ebiten.SetWindowTitle(s.Title())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		return err
	}

	// closing the window is a quit too
	if !s.Quitting() {
		return s.Quit()
	}
	return nil
}
