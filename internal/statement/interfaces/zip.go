package interfaces

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeZip bundles the given artifact files into a zip stream, storing each
// under its base name only.
func writeZip(w io.Writer, paths []string) error {
	zw := zip.NewWriter(w)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			zw.Close()
			return fmt.Errorf("zip: open %s: %w", path, err)
		}
		entry, err := zw.Create(filepath.Base(path))
		if err != nil {
			f.Close()
			zw.Close()
			return fmt.Errorf("zip: create entry: %w", err)
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			zw.Close()
			return fmt.Errorf("zip: write entry: %w", err)
		}
		f.Close()
	}
	return zw.Close()
}
