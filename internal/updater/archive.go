package updater

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extract unpacks the zip archive src into dest. When every entry lives
// under one top-level directory named after the archive (foo/ in foo.zip),
// that directory is stripped. Entries escaping dest are rejected.
func Extract(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	dest, err = filepath.Abs(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}

	prefix := commonRoot(r.File)
	if prefix != strings.TrimSuffix(filepath.Base(src), ".zip")+"/" {
		prefix = ""
	}

	for _, f := range r.File {
		name := path.Clean(f.Name)
		if prefix != "" && name+"/" == prefix {
			continue
		}
		name = strings.TrimPrefix(name, prefix)
		if name == "" || name == "." {
			continue
		}

		fpath := filepath.Join(dest, filepath.FromSlash(name))
		if !strings.HasPrefix(fpath, dest+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path in archive: %s", f.Name)
		}

		if err := extractEntry(f, fpath, dest); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractEntry(f *zip.File, fpath, dest string) error {
	mode := f.Mode()

	if mode.IsDir() {
		return os.MkdirAll(fpath, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if mode&os.ModeSymlink != 0 {
		target, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		link := string(target)
		resolved := filepath.Join(filepath.Dir(fpath), link)
		if filepath.IsAbs(link) || !strings.HasPrefix(resolved, dest+string(os.PathSeparator)) {
			return fmt.Errorf("symlink escapes destination: %s", link)
		}
		os.Remove(fpath)
		return os.Symlink(link, fpath)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// commonRoot returns "dir/" when all entries share the single top-level
// directory dir, or "" otherwise.
func commonRoot(files []*zip.File) string {
	root := ""
	for _, f := range files {
		name := path.Clean(f.Name)
		first, _, nested := strings.Cut(name, "/")
		if !nested && !f.Mode().IsDir() {
			// a file at the top level
			return ""
		}
		if root == "" {
			root = first
		} else if first != root {
			return ""
		}
	}
	if root == "" {
		return ""
	}
	return root + "/"
}
