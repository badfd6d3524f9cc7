// Package updater downloads prebuilt engine releases into a project's
// libraries/ directory.
package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/simulant-engine/simulant-tools/internal/config"
	"github.com/simulant-engine/simulant-tools/internal/target"
	"github.com/simulant-engine/simulant-tools/internal/ui"
	"github.com/simulant-engine/simulant-tools/pkg/xos"
)

// AssetsArchive is the shared engine asset bundle on the feed.
const AssetsArchive = "simulant-assets.zip"

// replacedDirs are copied from a release archive into the library dir,
// each replacing any previous copy wholesale.
var replacedDirs = []string{"include", "lib", "toolchains"}

// Options tune an update.
type Options struct {
	// NativeOnly skips console releases.
	NativeOnly bool
}

// Updater fetches engine releases from the configured feed.
type Updater struct {
	cfg      config.Config
	log      *logrus.Logger
	out      *ui.Printer
	client   *http.Client
	progress io.Writer
	goos     string
}

// New creates an updater. Download progress bars are drawn on progress.
func New(cfg config.Config, log *logrus.Logger, out *ui.Printer, progress io.Writer) *Updater {
	return &Updater{
		cfg:      cfg,
		log:      log,
		out:      out,
		client:   http.DefaultClient,
		progress: progress,
		goos:     runtime.GOOS,
	}
}

// Targets returns the (platform, build type) pairs an update installs: the
// host platform in debug and release, plus the console release.
func Targets(nativeOnly bool) ([]target.Target, error) {
	var out []target.Target
	for _, release := range []bool{false, true} {
		t, err := target.New(target.Native(), release)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if !nativeOnly {
		t, err := target.New(target.PlatformDreamcast, true)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ArchiveName returns the release archive file name for t.
func ArchiveName(t target.Target) string {
	return fmt.Sprintf("simulant-%s-%s-%s.zip", t.Platform, t.Arch, t.BuildType)
}

func (u *Updater) url(name string) string {
	return strings.TrimRight(u.cfg.Engine.FeedURL, "/") + "/" + u.cfg.Engine.Version + "/" + name
}

// Update installs every release for the project at root, then the shared
// assets. The first failure aborts.
func (u *Updater) Update(ctx context.Context, root string, opts Options) error {
	targets, err := Targets(opts.NativeOnly)
	if err != nil {
		return err
	}

	tmp, err := os.MkdirTemp("", "simulant-update-")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	for _, t := range targets {
		if err := u.installRelease(ctx, root, t, tmp); err != nil {
			return fmt.Errorf("failed to update %s: %w", t, err)
		}
	}

	if err := u.installAssets(ctx, root, tmp); err != nil {
		return fmt.Errorf("failed to update assets: %w", err)
	}
	return nil
}

func (u *Updater) installRelease(ctx context.Context, root string, t target.Target, tmp string) error {
	name := ArchiveName(t)
	u.out.Info(ui.IconPackage, "Downloading %s", name)

	archive := filepath.Join(tmp, name)
	if err := u.download(ctx, u.url(name), archive); err != nil {
		return err
	}

	extracted := filepath.Join(tmp, strings.TrimSuffix(name, ".zip"))
	if err := Extract(archive, extracted); err != nil {
		return err
	}

	libDir := t.LibraryDir(root)
	if err := os.MkdirAll(libDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", libDir, err)
	}

	installed := 0
	for _, dir := range replacedDirs {
		src := filepath.Join(extracted, dir)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}
		u.log.Debugf("update: replacing %s", filepath.Join(libDir, dir))
		if err := xos.ReplaceDir(src, filepath.Join(libDir, dir)); err != nil {
			return fmt.Errorf("failed to install %s: %w", dir, err)
		}
		installed++
	}
	if installed == 0 {
		return fmt.Errorf("archive %s contains no include/ or lib/ directory", name)
	}

	if u.goos == "linux" {
		if err := LinkVersions(filepath.Join(libDir, "lib")); err != nil {
			return err
		}
	}
	return nil
}

func (u *Updater) installAssets(ctx context.Context, root, tmp string) error {
	u.out.Info(ui.IconPackage, "Downloading %s", AssetsArchive)

	archive := filepath.Join(tmp, AssetsArchive)
	if err := u.download(ctx, u.url(AssetsArchive), archive); err != nil {
		return err
	}

	extracted := filepath.Join(tmp, "assets")
	if err := Extract(archive, extracted); err != nil {
		return err
	}
	return xos.ReplaceDir(extracted, filepath.Join(root, "assets", "simulant"))
}

// download fetches url into dest with a progress bar.
func (u *Updater) download(ctx context.Context, url, dest string) error {
	u.log.Debugf("update: GET %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionSetWriter(u.progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(u.progress, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)

	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if err := bar.Finish(); err != nil {
		return err
	}
	return out.Close()
}
