package planner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/infra/fsx"
)

func mustDate(t *testing.T, y, m int) domain.CaptureDate {
	t.Helper()
	d, err := domain.NewCaptureDate(y, m, domain.DateFromMetadata)
	if err != nil {
		t.Fatalf("NewCaptureDate: %v", err)
	}
	return d
}

func TestPlan_NoZeroPadding(t *testing.T) {
	root := filepath.Join("/", "photos", "out")
	file := domain.ImageFile{AbsPath: "/in/IMG_1.JPG", Name: "IMG_1.JPG", Ext: ".jpg"}

	p := Plan(root, file, mustDate(t, 2010, 3))
	if want := filepath.Join(root, "2010", "3"); p.DstDir != want {
		t.Fatalf("DstDir = %q, want %q", p.DstDir, want)
	}
	if want := filepath.Join(root, "2010", "3", "IMG_1.JPG"); p.Dst != want {
		t.Fatalf("Dst = %q, want %q", p.Dst, want)
	}

	p = Plan(root, file, mustDate(t, 2010, 12))
	if filepath.Base(p.DstDir) != "12" {
		t.Fatalf("unexpected month dir %q", p.DstDir)
	}
}

func TestEnsureDestination_CreatesAndReuses(t *testing.T) {
	root := t.TempDir()
	d := mustDate(t, 2011, 7)

	dir, err := EnsureDestination(root, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != DestDir(root, d) {
		t.Fatalf("got %q, want %q", dir, DestDir(root, d))
	}
	marker := filepath.Join(dir, "keep.jpg")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := EnsureDestination(root, d); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("existing contents must survive: %v", err)
	}
}

func TestEnsureDestination_YearIsAFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "2011"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := EnsureDestination(root, mustDate(t, 2011, 7))
	if !IsDirError(err) {
		t.Fatalf("expected DirError, got %T %v", err, err)
	}
	if !fsx.IsPathTypeConflict(err) {
		t.Fatalf("expected the type conflict to be reachable through DirError: %v", err)
	}
}

func TestEnsureDestination_MissingRoot(t *testing.T) {
	_, err := EnsureDestination(filepath.Join(t.TempDir(), "gone"), mustDate(t, 2000, 1))
	if !IsDirError(err) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected DirError wrapping not-exist, got %v", err)
	}
}
