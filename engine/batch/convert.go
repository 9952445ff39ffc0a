// Package batch fans per-file format conversions out over a bounded worker
// pool. A failed file is logged and skipped; it never stops the batch.
package batch

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter turns the file at in into the file at out
type Converter interface {
	Convert(ctx context.Context, in, out string) error
}

// ExecConverter runs an external executable once per file. Args is a
// template where "{in}" and "{out}" are replaced by the paths; the tokens
// may be embedded, e.g. "{in}[0]".
type ExecConverter struct {
	Exe  string
	Args []string
}

// NewPal2Pac converts between paa and png with Pal2PacE
func NewPal2Pac(exe string) *ExecConverter {
	return &ExecConverter{Exe: exe, Args: []string{"{in}", "{out}"}}
}

// NewMagick flattens the first layer of a PSD to png with ImageMagick
func NewMagick(exe string) *ExecConverter {
	return &ExecConverter{Exe: exe, Args: []string{"{in}[0]", "{out}"}}
}

func (c *ExecConverter) args(in, out string) []string {
	r := strings.NewReplacer("{in}", in, "{out}", out)
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = r.Replace(a)
	}
	return args
}

func (c *ExecConverter) Convert(ctx context.Context, in, out string) error {
	cmd := exec.CommandContext(ctx, c.Exe, c.args(in, out)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			return fmt.Errorf("%s %s: %w", filepath.Base(c.Exe), in, err)
		}
		return fmt.Errorf("%s %s: %w: %s", filepath.Base(c.Exe), in, err, msg)
	}
	return nil
}
