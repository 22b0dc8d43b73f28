package engine

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// bundleParts writes all produced parts into a single zip. Entries are
// stored uncompressed; the video payload does not deflate and re-reading
// tens of gigabytes through a compressor would double the job's tail time.
func bundleParts(zipPath string, parts []Part) error {
	if len(parts) == 0 {
		return fmt.Errorf("no parts to bundle")
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, p := range parts {
		if err := addStored(zw, p.Path); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}

func addStored(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open part %s: %w", filepath.Base(path), err)
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(path),
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", filepath.Base(path), err)
	}

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("zip copy %s: %w", filepath.Base(path), err)
	}
	return nil
}
