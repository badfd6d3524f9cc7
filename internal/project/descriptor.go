// Package project reads and writes the simulant.json project descriptor.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/simulant-engine/simulant-tools/pkg/xos"
)

// FileName is the descriptor file expected at the project root.
const FileName = "simulant.json"

// ErrNotProject is returned when no descriptor can be found.
var ErrNotProject = errors.New("not a simulant project (no " + FileName + " found)")

// Descriptor is the project manifest consumed by the build, package and
// run commands.
type Descriptor struct {
	Name       string `json:"name"`
	Package    string `json:"package"`
	Executable string `json:"executable"`
	Author     string `json:"author"`
}

// Project pairs a descriptor with the directory it was loaded from.
type Project struct {
	Root       string
	Descriptor Descriptor
}

// Find walks up from dir looking for simulant.json and returns the
// directory containing it.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNotProject
}

// Open locates the project containing dir and loads its descriptor.
func Open(dir string) (*Project, error) {
	root, err := Find(dir)
	if err != nil {
		return nil, err
	}

	desc, err := Load(root)
	if err != nil {
		return nil, err
	}

	return &Project{Root: root, Descriptor: *desc}, nil
}

// Load reads and validates the descriptor in root.
func Load(root string) (*Descriptor, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotProject
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &desc, nil
}

// Validate checks the descriptor against the schema without touching disk.
func (d Descriptor) Validate() error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}
	return Validate(data)
}

// Save writes the descriptor to root/simulant.json atomically.
func (d Descriptor) Save(root string) error {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}
	data = append(data, '\n')

	if err := xos.WriteFile(filepath.Join(root, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}

	return nil
}

// AssetsDir returns the project's asset tree.
func (p *Project) AssetsDir() string {
	return filepath.Join(p.Root, "assets")
}
