// Tool to copy every image tagged during review (review.copy_tag, "copy" by
// default) from the review root into selected/, keeping relative paths.
package main

import (
	"context"
	"fmt"

	"github.com/1siamBot/modkit/engine/cli"
	"github.com/1siamBot/modkit/engine/config"
	"github.com/1siamBot/modkit/engine/tagcopy"
	"github.com/1siamBot/modkit/engine/tags"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cli.Execute(cli.NewToolCommand("copy_tagged", "Copy tagged images into selected/", "", run))
}

func run(_ context.Context, cfg config.Config, log logrus.FieldLogger) error {
	fs := afero.NewOsFs()
	src := cfg.Path(cfg.Review.ImageRoot)
	dest := cfg.Path(cfg.Paths.Selected)

	store := tags.Load(fs, cfg.Path(cfg.Review.TagsFile), log)
	n, err := tagcopy.Copy(fs, store, src, dest, cfg.Review.CopyTag, log)
	if err != nil {
		return err
	}
	fmt.Printf("Copied %d files tagged with '%s' from %s to %s.\n", n, cfg.Review.CopyTag, src, dest)
	return nil
}
