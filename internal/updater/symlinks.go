package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/simulant-engine/simulant-tools/pkg/xos"
)

// VersionSuffix marks files recording the full version of a shared library.
const VersionSuffix = ".version"

// LinkVersions reads every <lib>.version marker in dir and points the
// unversioned and major-version names at the fully versioned library:
//
//	libsimulant.so   -> libsimulant.so.1.2.3
//	libsimulant.so.1 -> libsimulant.so.1.2.3
func LinkVersions(dir string) error {
	markers, err := filepath.Glob(filepath.Join(dir, "*"+VersionSuffix))
	if err != nil {
		return err
	}

	for _, marker := range markers {
		data, err := os.ReadFile(marker)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", marker, err)
		}
		version := strings.TrimSpace(string(data))
		if version == "" {
			return fmt.Errorf("empty version in %s", marker)
		}

		base := strings.TrimSuffix(filepath.Base(marker), VersionSuffix)
		base = strings.TrimSuffix(base, ".so")

		versioned := base + ".so." + version
		if _, err := os.Stat(filepath.Join(dir, versioned)); err != nil {
			return fmt.Errorf("%s names missing library %s: %w", filepath.Base(marker), versioned, err)
		}

		links := []string{base + ".so"}
		if major, _, ok := strings.Cut(version, "."); ok {
			links = append(links, base+".so."+major)
		}
		for _, link := range links {
			if err := xos.Symlink(versioned, filepath.Join(dir, link)); err != nil {
				return fmt.Errorf("failed to link %s: %w", link, err)
			}
		}
	}
	return nil
}
