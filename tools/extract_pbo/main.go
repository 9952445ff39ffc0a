// Tool to unpack every .pbo below paths.modding with ExtractPbo and merge the
// content into paths.mod_output. Broken archives are skipped.
package main

import (
	"context"
	"fmt"

	"github.com/1siamBot/modkit/engine/archive"
	"github.com/1siamBot/modkit/engine/cli"
	"github.com/1siamBot/modkit/engine/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cli.Execute(cli.NewToolCommand("extract_pbo", "Extract all PBO archives into the mod output tree", "", run))
}

func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	e := archive.NewExtractor(cfg.Tools.ExtractPbo, afero.NewOsFs(), cfg.Tools.ExtractWorkers, log)

	results, err := e.ExtractAll(ctx, cfg.Path(cfg.Paths.Modding), cfg.Path(cfg.Paths.ModOutput))
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	fmt.Printf("Extracted %d of %d archives\n", len(results)-failed, len(results))
	return nil
}
