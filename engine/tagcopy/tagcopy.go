// Package tagcopy copies the images carrying a tag out of the review tree
package tagcopy

import (
	"fmt"
	"path/filepath"

	"github.com/1siamBot/modkit/engine/mirror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Source lists images carrying a tag
type Source interface {
	Tagged(tag string) []string
}

// Copy copies every image tagged tag from srcDir to the same relative path
// below destDir. Images missing from srcDir are skipped. It returns the
// number of files copied.
func Copy(fs afero.Fs, tags Source, srcDir, destDir, tag string, log logrus.FieldLogger) (int, error) {
	n := 0
	for _, image := range tags.Tagged(tag) {
		src := filepath.Join(srcDir, image)
		ok, err := afero.Exists(fs, src)
		if err != nil {
			return n, err
		}
		if !ok {
			if log != nil {
				log.WithField("image", image).Warn("tagged image missing, skipped")
			}
			continue
		}
		if err := mirror.CopyFile(fs, src, filepath.Join(destDir, image)); err != nil {
			return n, fmt.Errorf("copy %s: %w", image, err)
		}
		n++
	}
	return n, nil
}
