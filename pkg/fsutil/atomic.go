package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0o644

// WriteAtomic writes content to path through a temp file in the same
// directory and a rename. A zero mode means DefaultFileMode. On error the
// target is left untouched.
func WriteAtomic(ctx context.Context, path, content string, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}
	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode.Perm()); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// RewriteOptions controls Rewrite.
type RewriteOptions struct {
	// Backup keeps the original content in a sidecar file.
	Backup bool
}

// Rewrite replaces the file read as snap with content. It returns false
// without writing when content equals what was read, and ErrModified when
// the file changed on disk in the meantime.
func Rewrite(ctx context.Context, snap *Snapshot, content string, opts RewriteOptions) (bool, error) {
	if snap == nil {
		return false, ErrNilSnapshot
	}
	if snap.Same(content) {
		return false, nil
	}

	modified, err := snap.Modified(ctx)
	if err != nil {
		return false, err
	}
	if modified {
		return false, fmt.Errorf("%w: %s", ErrModified, snap.Path)
	}

	if opts.Backup {
		if _, err := CreateBackup(ctx, snap.Path); err != nil {
			return false, err
		}
	}

	if err := WriteAtomic(ctx, snap.Path, content, snap.Mode); err != nil {
		return false, err
	}
	return true, nil
}
