package engine

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestBundleParts(t *testing.T) {
	dir := t.TempDir()

	var parts []Part
	for i, name := range []string{"movie_part01.mp4", "movie_part02.mp4"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("fake video bytes"), 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		parts = append(parts, Part{Index: i + 1, Path: path})
	}

	zipPath := filepath.Join(dir, "movie.zip")
	if err := bundleParts(zipPath, parts); err != nil {
		t.Fatalf("bundleParts() error = %v", err)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != 2 {
		t.Fatalf("zip has %d entries, want 2", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != filepath.Base(parts[i].Path) {
			t.Errorf("entry %d = %q, want %q", i, f.Name, filepath.Base(parts[i].Path))
		}
		if f.Method != zip.Store {
			t.Errorf("entry %q method = %d, want Store", f.Name, f.Method)
		}
	}
}

func TestBundleParts_NoParts(t *testing.T) {
	if err := bundleParts(filepath.Join(t.TempDir(), "x.zip"), nil); err == nil {
		t.Fatal("expected error for empty part list")
	}
}

func TestBundleParts_MissingPart(t *testing.T) {
	dir := t.TempDir()
	err := bundleParts(filepath.Join(dir, "x.zip"), []Part{{Index: 1, Path: filepath.Join(dir, "gone.mp4")}})
	if err == nil {
		t.Fatal("expected error for missing part file")
	}
}
