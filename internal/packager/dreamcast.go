package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/simulant-engine/simulant-tools/internal/builder"
	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/container"
	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/internal/target"
	"github.com/simulant-engine/simulant-tools/internal/ui"
	"github.com/simulant-engine/simulant-tools/pkg/xos"
)

// Disc image file names.
const (
	IPTemplate   = "IP.TMPL"
	IPText       = "ip.txt"
	IPBinary     = "IP.BIN"
	BootBinary   = "1ST_READ.BIN"
	StrippedName = "output.bin"
	StagingDir   = "disc"
)

// Dreamcast builds a bootable .cdi disc image from a console build.
type Dreamcast struct {
	env container.Provider
	cfg config.Config
	log *logrus.Logger
	out *ui.Printer
}

// NewDreamcast creates the console packager.
func NewDreamcast(env container.Provider, cfg config.Config, log *logrus.Logger, out *ui.Printer) *Dreamcast {
	return &Dreamcast{env: env, cfg: cfg, log: log, out: out}
}

// Package stages the disc and returns the path of the .cdi image.
func (d *Dreamcast) Package(ctx context.Context, proj *project.Project) (string, error) {
	t, err := target.New(target.PlatformDreamcast, true)
	if err != nil {
		return "", err
	}
	desc := proj.Descriptor
	pkgDir := t.PackageDir(proj.Root)
	staging := filepath.Join(pkgDir, StagingDir)

	elf, err := FindBinary(t.BuildDir(proj.Root), ".elf")
	if err != nil {
		return "", err
	}

	ipTemplate, err := builder.FindFile(builder.ToolchainDirs(proj.Root, t, d.cfg), IPTemplate)
	if err != nil {
		if errors.Is(err, builder.ErrToolchainNotFound) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, IPTemplate)
		}
		return "", err
	}

	d.out.Step("Preparing %s", pkgDir)
	if err := xos.ResetDir(pkgDir); err != nil {
		return "", fmt.Errorf("failed to reset package directory: %w", err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	if assets := proj.AssetsDir(); dirExists(assets) {
		d.out.Step("Copying assets")
		if err := xos.CopyTree(assets, filepath.Join(staging, "assets")); err != nil {
			return "", fmt.Errorf("failed to copy assets: %w", err)
		}
	}

	if err := xos.CopyFile(ipTemplate, filepath.Join(staging, IPTemplate)); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", IPTemplate, err)
	}

	ipText, err := RenderIPText(desc.Name, desc.Author)
	if err != nil {
		return "", err
	}
	if err := xos.WriteFile(filepath.Join(staging, IPText), ipText, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", IPText, err)
	}

	env, err := d.env(ctx, proj.Root, d.cfg.Container.MountPath)
	if err != nil {
		return "", err
	}
	stagingIn, err := env.Path(staging)
	if err != nil {
		return "", err
	}
	pkgDirIn, err := env.Path(pkgDir)
	if err != nil {
		return "", err
	}
	elfIn, err := env.Path(elf)
	if err != nil {
		return "", err
	}

	run := func(dir string, args ...string) error {
		_, err := env.Exec(ctx, container.ExecRequest{Args: args, Dir: dir, Check: true})
		if err != nil {
			return fmt.Errorf("%s failed: %w", args[0], err)
		}
		return nil
	}

	d.out.Step("Generating %s", IPBinary)
	if err := run(stagingIn, "makeip", IPText, IPBinary); err != nil {
		return "", err
	}
	for _, name := range []string{IPTemplate, IPText} {
		if err := os.Remove(filepath.Join(staging, name)); err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	d.out.Step("Scrambling %s", filepath.Base(elf))
	if err := run(stagingIn, "sh-elf-objcopy", "-R", ".stack", "-O", "binary", "-S", "-g", elfIn, StrippedName); err != nil {
		return "", err
	}
	if err := run(stagingIn, "scramble", StrippedName, BootBinary); err != nil {
		return "", err
	}
	if err := os.Remove(filepath.Join(staging, StrippedName)); err != nil {
		return "", fmt.Errorf("failed to remove %s: %w", StrippedName, err)
	}

	iso := desc.Executable + ".iso"
	cdi := desc.Executable + ".cdi"

	d.out.Step("Creating %s", iso)
	if err := run(pkgDirIn,
		"mkisofs", "-C", "0,11702", "-V", desc.Name,
		"-G", StagingDir+"/"+IPBinary,
		"-r", "-J", "-l",
		"-o", iso, StagingDir,
	); err != nil {
		return "", err
	}

	d.out.Step("Creating %s", cdi)
	if err := run(pkgDirIn, "cdi4dc", iso, cdi); err != nil {
		return "", err
	}

	return filepath.Join(pkgDir, cdi), nil
}

// FindBinary returns the single file in dir with the given extension.
func FindBinary(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
			found = append(found, e.Name())
		}
	}
	sort.Strings(found)

	switch len(found) {
	case 1:
		return filepath.Join(dir, found[0]), nil
	case 0:
		return "", fmt.Errorf("%w: no *%s in %s (build first)", ErrBinaryAmbiguous, ext, dir)
	default:
		return "", fmt.Errorf("%w: found %s", ErrBinaryAmbiguous, strings.Join(found, ", "))
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
