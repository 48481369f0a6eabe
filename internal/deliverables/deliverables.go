// Package deliverables manages the per-interview file tree: the upload
// directory holding deliverable files, the generated-output directory,
// and byte-for-byte copies of deliverables between interviews.
package deliverables

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DheerG/LogicPull/pkg/fault"
)

// Layout resolves the on-disk locations owned by an interview under the
// configured data root.
type Layout struct {
	Root string
}

// dirName is the <name>-<id> convention shared by both directories.
func dirName(name string, id int) string {
	return fmt.Sprintf("%s-%d", name, id)
}

// UploadDir is where an interview's deliverable files live.
func (l Layout) UploadDir(name string, id int) string {
	return filepath.Join(l.Root, "uploads", "deliverables", dirName(name, id))
}

// OutputDir is where generated output and tmp files land.
func (l Layout) OutputDir(name string, id int) string {
	return filepath.Join(l.Root, "generated", "output", dirName(name, id))
}

// PreloadDir holds the editor preload scripts.
func (l Layout) PreloadDir() string {
	return filepath.Join(l.Root, "public", "javascripts", "preload")
}

// CreateDirs makes the upload and output directories for an interview.
// Creation is sequential: the output directory is only attempted once
// the upload directory exists.
func (l Layout) CreateDirs(name string, id int) error {
	if err := os.MkdirAll(l.UploadDir(name, id), 0o777); err != nil {
		return fault.FileSystem("creating deliverables directory", err)
	}
	if err := os.MkdirAll(l.OutputDir(name, id), 0o777); err != nil {
		return fault.FileSystem("creating output directory", err)
	}
	return nil
}

// RemoveDirs deletes both directories, for rolling back a failed create
// or clone. Missing directories are not an error.
func (l Layout) RemoveDirs(name string, id int) error {
	if err := os.RemoveAll(l.UploadDir(name, id)); err != nil {
		return fault.FileSystem("removing deliverables directory", err)
	}
	if err := os.RemoveAll(l.OutputDir(name, id)); err != nil {
		return fault.FileSystem("removing output directory", err)
	}
	return nil
}

// copyFile copies one file byte-for-byte.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
