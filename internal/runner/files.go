package runner

import (
	"io"
	"os"
	"path/filepath"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
)

// writeFile writes data to dst with the permissions of the file at like.
func writeFile(dst string, data []byte, like string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(like); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(errors.IO, "Failed to create "+filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, data, perm); err != nil {
		return errors.Wrap(errors.IO, "Failed to write "+dst, err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(errors.IO, "Failed to read "+src, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(errors.IO, "Failed to read "+src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(errors.IO, "Failed to create "+filepath.Dir(dst), err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(errors.IO, "Failed to write "+dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.IO, "Failed to write "+dst, cerr)
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrap(errors.IO, "Failed to copy "+src, err)
	}
	return nil
}

// cleanDir removes everything inside dir. A missing dir is created.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
