// Tool to convert the game's .paa textures below source/ into .png files in
// extracted/, keeping the directory layout. Textures already converted are
// left alone so an interrupted run can simply be restarted.
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
	cli.Execute(cli.NewToolCommand("convert_paa2png", "Convert source/*.paa to extracted/*.png", "", run))
}

func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	fs := afero.NewOsFs()
	r := batch.NewRunner(batch.NewPal2Pac(cfg.Tools.Pal2Pac), fs, cfg.Tools.Workers, log)

	results, err := r.ConvertTree(ctx, cfg.Path(cfg.Paths.Source), cfg.Path(cfg.Paths.Extracted), "*.paa", ".png", batch.SkipExisting)
	if err != nil {
		return err
	}
	fmt.Printf("Converted %d of %d textures\n", len(results)-batch.Failed(results), len(results))
	return nil
}
