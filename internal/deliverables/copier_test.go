package deliverables

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/workerpool"
	"github.com/DheerG/LogicPull/pkg/fault"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func TestCopyAll_CopiesEveryFile(t *testing.T) {
	ctx := context.Background()
	src, dst := t.TempDir(), t.TempDir()

	writeFixture(t, src, "a.pdf", "alpha")
	writeFixture(t, src, "b.pdf", "bravo")

	pool := workerpool.NewWorkerPool(ctx, 2, 4)
	copier := NewCopier(pool)

	files := []models.Deliverable{
		{ID: "d1", Name: "a.pdf"},
		{ID: "d2", Name: "b.pdf"},
	}
	if err := copier.CopyAll(ctx, src, dst, files); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, want := range map[string]string{"a.pdf": "alpha", "b.pdf": "bravo"} {
		got, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("reading copy %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("copy %s = %q, want %q", name, got, want)
		}
	}
}

func TestCopyAll_MissingSourceFailsBatch(t *testing.T) {
	ctx := context.Background()
	src, dst := t.TempDir(), t.TempDir()

	writeFixture(t, src, "present.pdf", "ok")

	pool := workerpool.NewWorkerPool(ctx, 2, 4)
	copier := NewCopier(pool)

	files := []models.Deliverable{
		{ID: "d1", Name: "present.pdf"},
		{ID: "d2", Name: "missing.pdf"},
	}

	err := copier.CopyAll(ctx, src, dst, files)
	if err == nil {
		t.Fatal("expected a batch error when one source file is missing")
	}
	if !fault.IsInternalError(err) {
		t.Errorf("expected an internal fault, got %v", err)
	}
}

func TestCopyAll_EmptyBatch(t *testing.T) {
	pool := workerpool.NewWorkerPool(context.Background(), 1, 1)
	copier := NewCopier(pool)

	if err := copier.CopyAll(context.Background(), "nowhere", "nowhere-else", nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "/data"}

	if got := l.UploadDir("divorce", 7); got != filepath.Join("/data", "uploads", "deliverables", "divorce-7") {
		t.Errorf("unexpected upload dir %q", got)
	}
	if got := l.OutputDir("divorce", 7); got != filepath.Join("/data", "generated", "output", "divorce-7") {
		t.Errorf("unexpected output dir %q", got)
	}
}

func TestCreateAndRemoveDirs(t *testing.T) {
	l := Layout{Root: t.TempDir()}

	if err := l.CreateDirs("wills", 3); err != nil {
		t.Fatalf("CreateDirs: %v", err)
	}
	if _, err := os.Stat(l.UploadDir("wills", 3)); err != nil {
		t.Errorf("upload dir missing: %v", err)
	}
	if _, err := os.Stat(l.OutputDir("wills", 3)); err != nil {
		t.Errorf("output dir missing: %v", err)
	}

	if err := l.RemoveDirs("wills", 3); err != nil {
		t.Fatalf("RemoveDirs: %v", err)
	}
	if _, err := os.Stat(l.UploadDir("wills", 3)); !os.IsNotExist(err) {
		t.Errorf("upload dir should be gone, stat err = %v", err)
	}
}
