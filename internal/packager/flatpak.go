package packager

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/pgzip"
	"github.com/sirupsen/logrus"

	"github.com/simulant-engine/simulant-tools/internal/builder"
	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/process"
	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/internal/target"
	"github.com/simulant-engine/simulant-tools/internal/ui"
	"github.com/simulant-engine/simulant-tools/pkg/xos"
)

// Flatpak builds a single-file .flatpak bundle from a linux build.
type Flatpak struct {
	runner process.Runner
	cfg    config.Config
	log    *logrus.Logger
	out    *ui.Printer
}

// NewFlatpak creates the desktop packager.
func NewFlatpak(runner process.Runner, cfg config.Config, log *logrus.Logger, out *ui.Printer) *Flatpak {
	return &Flatpak{runner: runner, cfg: cfg, log: log, out: out}
}

type flatpakData struct {
	ID             string
	Name           string
	Author         string
	Executable     string
	Arch           string
	Runtime        string
	RuntimeVersion string
	SDK            string
}

// Package lays out the flatpak build directory for t and bundles it.
// Returns the path of the .flatpak file.
func (f *Flatpak) Package(ctx context.Context, proj *project.Project, t target.Target) (string, error) {
	if _, err := f.runner.LookPath("flatpak"); err != nil {
		return "", fmt.Errorf("%w: flatpak", builder.ErrToolNotFound)
	}

	desc := proj.Descriptor
	buildDir := t.BuildDir(proj.Root)
	binary := filepath.Join(buildDir, desc.Executable)
	if _, err := os.Stat(binary); err != nil {
		return "", fmt.Errorf("executable %s not found (build first): %w", binary, err)
	}

	data := flatpakData{
		ID:             desc.Package,
		Name:           desc.Name,
		Author:         desc.Author,
		Executable:     desc.Executable,
		Arch:           t.Arch,
		Runtime:        f.cfg.Flatpak.Runtime,
		RuntimeVersion: f.cfg.Flatpak.RuntimeVersion,
		SDK:            f.cfg.Flatpak.SDK,
	}

	pkgDir := t.PackageDir(proj.Root)
	root := filepath.Join(pkgDir, "build")
	files := filepath.Join(root, "files")

	f.out.Step("Preparing %s", pkgDir)
	if err := xos.ResetDir(pkgDir); err != nil {
		return "", fmt.Errorf("failed to reset package directory: %w", err)
	}

	metadata, err := render("metadata.tmpl", data)
	if err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(root, "metadata"), metadata); err != nil {
		return "", err
	}

	if err := xos.CopyFile(binary, filepath.Join(files, "bin", desc.Executable)); err != nil {
		return "", fmt.Errorf("failed to copy executable: %w", err)
	}

	f.out.Step("Copying libraries")
	if err := copyLibraries(filepath.Join(files, "lib"), buildDir, filepath.Join(t.LibraryDir(proj.Root), "lib")); err != nil {
		return "", err
	}

	if assets := proj.AssetsDir(); dirExists(assets) {
		f.out.Step("Copying assets")
		if err := xos.CopyTree(assets, filepath.Join(files, "bin", "assets")); err != nil {
			return "", fmt.Errorf("failed to copy assets: %w", err)
		}
	}

	if err := f.writeExports(root, data); err != nil {
		return "", err
	}

	repo, err := os.MkdirTemp("", "simulant-flatpak-repo-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary repository: %w", err)
	}
	defer os.RemoveAll(repo)

	bundle := filepath.Join(pkgDir, desc.Executable+".flatpak")

	f.out.Step("Exporting to repository")
	if err := f.runner.Run(ctx, process.Command{
		Name: "flatpak",
		Args: []string{"build-export", repo, root},
		Dir:  pkgDir,
	}); err != nil {
		return "", fmt.Errorf("flatpak build-export failed: %w", err)
	}

	f.out.Step("Bundling %s", filepath.Base(bundle))
	if err := f.runner.Run(ctx, process.Command{
		Name: "flatpak",
		Args: []string{"build-bundle", repo, bundle, desc.Package},
		Dir:  pkgDir,
	}); err != nil {
		return "", fmt.Errorf("flatpak build-bundle failed: %w", err)
	}

	return bundle, nil
}

// writeExports writes the desktop entry and compressed appdata under both
// files/share and export/share.
func (f *Flatpak) writeExports(root string, data flatpakData) error {
	desktop, err := render("desktop.tmpl", data)
	if err != nil {
		return err
	}
	appdata, err := render("appdata.xml.tmpl", data)
	if err != nil {
		return err
	}
	gz, err := gzipBytes(appdata)
	if err != nil {
		return fmt.Errorf("failed to compress appdata: %w", err)
	}

	for _, share := range []string{
		filepath.Join(root, "files", "share"),
		filepath.Join(root, "export", "share"),
	} {
		if err := writeFile(filepath.Join(share, "applications", data.ID+".desktop"), desktop); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(share, "metainfo", data.ID+".appdata.xml.gz"), gz); err != nil {
			return err
		}
	}
	return nil
}

// copyLibraries copies every *.so* file from the source dirs into dst.
// Missing source dirs are skipped.
func copyLibraries(dst string, srcDirs ...string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	for _, dir := range srcDirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.so*"))
		if err != nil {
			return err
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if err := xos.CopyFile(m, filepath.Join(dst, filepath.Base(m))); err != nil {
				return fmt.Errorf("failed to copy library %s: %w", m, err)
			}
		}
	}
	return nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := pgzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := xos.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
