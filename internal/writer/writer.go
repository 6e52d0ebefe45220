// Package writer commits a fully rendered file set to disk. Files are
// staged under a temporary directory inside the output root and then moved
// into place, so a render never leaves silent partial output: either every
// file lands or the failure names exactly what was and wasn't written.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tasker-systems/tasker-cli/internal/render"
)

// Error reports an I/O failure during the write phase. Written lists
// destinations that were already moved into place when the failure hit;
// empty means no destination was touched.
type Error struct {
	Written []string
	Err     error
}

func (e *Error) Error() string {
	if len(e.Written) == 0 {
		return fmt.Sprintf("writing output: %v (no files were written)", e.Err)
	}
	return fmt.Sprintf("writing output: %v (partial write: %s already written)",
		e.Err, strings.Join(e.Written, ", "))
}

func (e *Error) Unwrap() error { return e.Err }

// WriteAll writes rendered files under root. The full set is staged first;
// destinations are only touched after every file staged cleanly. Returns
// the written destination paths in render order.
func WriteAll(root string, files []render.RenderedFile) ([]string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, &Error{Err: fmt.Errorf("creating output root %s: %w", root, err)}
	}

	// Stage inside the root so the final rename never crosses filesystems.
	stage, err := os.MkdirTemp(root, ".tasker-stage-")
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("creating staging directory: %w", err)}
	}
	defer os.RemoveAll(stage)

	for _, f := range files {
		staged := filepath.Join(stage, f.Path)
		if err := os.MkdirAll(filepath.Dir(staged), 0755); err != nil {
			return nil, &Error{Err: fmt.Errorf("staging %s: %w", f.Path, err)}
		}
		if err := os.WriteFile(staged, f.Content, 0644); err != nil {
			return nil, &Error{Err: fmt.Errorf("staging %s: %w", f.Path, err)}
		}
	}

	var written []string
	for _, f := range files {
		dest := filepath.Join(root, f.Path)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return written, &Error{Written: written, Err: fmt.Errorf("creating directory for %s: %w", f.Path, err)}
		}
		if err := os.Rename(filepath.Join(stage, f.Path), dest); err != nil {
			return written, &Error{Written: written, Err: fmt.Errorf("moving %s into place: %w", f.Path, err)}
		}
		written = append(written, dest)
	}

	return written, nil
}
