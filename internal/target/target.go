// Package target resolves build targets and the directory layouts derived
// from them.
package target

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnsupportedPlatform is returned for platforms that parse but cannot be
// built or packaged.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Platform identifies an operating system or console.
type Platform string

const (
	PlatformLinux     Platform = "linux"
	PlatformDarwin    Platform = "darwin"
	PlatformWindows   Platform = "windows"
	PlatformDreamcast Platform = "dreamcast"
	PlatformAndroid   Platform = "android"
)

// BuildType selects the compiler configuration.
type BuildType string

const (
	BuildTypeDebug   BuildType = "debug"
	BuildTypeRelease BuildType = "release"
)

// CMakeName returns the CMAKE_BUILD_TYPE value for the build type.
func (b BuildType) CMakeName() string {
	if b == BuildTypeRelease {
		return "Release"
	}
	return "Debug"
}

// Native returns the platform of the running host.
func Native() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformDarwin
	default:
		return PlatformLinux
	}
}

// nativeArch maps GOARCH values to the architecture names used by the
// engine release archives.
func nativeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}

// ParsePlatform converts a CLI argument into a Platform. An empty string or
// "native" resolves to the host platform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return Native(), nil
	case "linux":
		return PlatformLinux, nil
	case "darwin", "macos", "osx":
		return PlatformDarwin, nil
	case "windows", "win":
		return PlatformWindows, nil
	case "dreamcast", "dc":
		return PlatformDreamcast, nil
	case "android":
		return PlatformAndroid, nil
	default:
		return "", fmt.Errorf("unknown platform %q (expected native, linux, windows, dreamcast or android)", s)
	}
}

// Target is the (platform, architecture, build type) triple that drives
// path and tool selection.
type Target struct {
	Platform  Platform
	Arch      string
	BuildType BuildType
}

// New builds the target for a platform. Dreamcast targets are always
// release builds; android is rejected.
func New(p Platform, release bool) (Target, error) {
	bt := BuildTypeDebug
	if release {
		bt = BuildTypeRelease
	}

	switch p {
	case PlatformDreamcast:
		return Target{Platform: p, Arch: "sh4", BuildType: BuildTypeRelease}, nil
	case PlatformWindows:
		if Native() != PlatformWindows {
			return Target{Platform: p, Arch: "x86_64", BuildType: bt}, nil
		}
		return Target{Platform: p, Arch: nativeArch(runtime.GOARCH), BuildType: bt}, nil
	case PlatformLinux, PlatformDarwin:
		return Target{Platform: p, Arch: nativeArch(runtime.GOARCH), BuildType: bt}, nil
	case PlatformAndroid:
		return Target{}, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, p)
	}
}

// Triple returns "<platform>-<arch>", the directory name used under build/,
// libraries/ and packages/.
func (t Target) Triple() string {
	return string(t.Platform) + "-" + t.Arch
}

// String implements fmt.Stringer.
func (t Target) String() string {
	return t.Triple() + " (" + string(t.BuildType) + ")"
}

// BuildDir returns root/build/<build_type>/<platform>-<arch>.
func (t Target) BuildDir(root string) string {
	return filepath.Join(root, "build", string(t.BuildType), t.Triple())
}

// LibraryDir returns root/libraries/<build_type>/<platform>-<arch>.
func (t Target) LibraryDir(root string) string {
	return filepath.Join(root, "libraries", string(t.BuildType), t.Triple())
}

// PackageDir returns root/packages/<platform>-<arch>.
func (t Target) PackageDir(root string) string {
	return filepath.Join(root, "packages", t.Triple())
}

// IsCross reports whether building t on host needs a toolchain other than
// the host's own.
func (t Target) IsCross(host Platform) bool {
	if t.Platform == PlatformDreamcast {
		return true
	}
	return t.Platform != host
}

// BinaryExtensions returns the file extensions a compiled executable for
// this target carries. An empty slice means the executable has no
// extension.
func (t Target) BinaryExtensions() []string {
	switch t.Platform {
	case PlatformDreamcast:
		return []string{".elf"}
	case PlatformWindows:
		return []string{".exe"}
	default:
		return nil
	}
}
