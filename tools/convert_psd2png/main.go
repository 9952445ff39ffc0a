// Tool to flatten edited .psd files below edited/ into .png previews in
// converted/. Existing previews are replaced.
package main

import (
	"context"
	"fmt"

	"github.com/1siamBot/modkit/engine/batch"
	"github.com/1siamBot/modkit/engine/cli"
	"github.com/1siamBot/modkit/engine/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cli.Execute(cli.NewToolCommand("convert_psd2png", "Convert edited/*.psd to converted/*.png", "", run))
}

func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	fs := afero.NewOsFs()
	r := batch.NewRunner(batch.NewMagick(cfg.Tools.Magick), fs, cfg.Tools.Workers, log)

	results, err := r.ConvertTree(ctx, cfg.Path(cfg.Paths.Edited), cfg.Path(cfg.Paths.Converted), "*.psd", ".png", batch.ReplaceExisting)
	if err != nil {
		return err
	}
	fmt.Printf("Converted %d of %d images\n", len(results)-batch.Failed(results), len(results))
	return nil
}
