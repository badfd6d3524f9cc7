package template

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simulant-engine/simulant-tools/internal/project"
)

func TestCaseHelpers(t *testing.T) {
	tests := []struct {
		in     string
		pascal string
		snake  string
	}{
		{"my cool game", "MyCoolGame", "my_cool_game"},
		{"my-cool-game", "MyCoolGame", "my_cool_game"},
		{"my_cool_game", "MyCoolGame", "my_cool_game"},
		{"MyCoolGame", "MyCoolGame", "my_cool_game"},
		{"Space Invaders 2", "SpaceInvaders2", "space_invaders_2"},
		{"  padded  ", "Padded", "padded"},
		{"Café Racer", "CafeRacer", "cafe_racer"},
		{"3D Racer", "3dRacer", "3d_racer"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Pascalize(tt.in); got != tt.pascal {
				t.Errorf("Pascalize: expected %q, got %q", tt.pascal, got)
			}
			if got := SnakeCase(tt.in); got != tt.snake {
				t.Errorf("SnakeCase: expected %q, got %q", tt.snake, got)
			}
		})
	}
}

func TestNewVariables(t *testing.T) {
	v := NewVariables("my cool game")
	want := Variables{Name: "my cool game", Pascal: "MyCoolGame", Snake: "my_cool_game", Upper: "MY_COOL_GAME"}
	if v != want {
		t.Errorf("expected %+v, got %+v", want, v)
	}
}

func TestNewVariables_DigitLeadingName(t *testing.T) {
	v := NewVariables("3D Racer")
	want := Variables{Name: "3D Racer", Pascal: "Game3dRacer", Snake: "game_3d_racer", Upper: "GAME_3D_RACER"}
	if v != want {
		t.Errorf("expected %+v, got %+v", want, v)
	}
}

func TestCreate(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mygame")

	if err := Create(dest, "my cool game", false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rel := range []string{
		"simulant.json",
		"CMakeLists.txt",
		"sources/main.cpp",
		"sources/scenes/game.h",
		"sources/scenes/game.cpp",
		"tests/my_cool_game.h",
		"assets/README.md",
		".gitignore",
	} {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	err := filepath.WalkDir(dest, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if strings.Contains(string(data), "__project_name") || strings.Contains(p, "__project_name") {
			t.Errorf("unsubstituted token left in %s", p)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	main, _ := os.ReadFile(filepath.Join(dest, "sources", "main.cpp"))
	if !strings.Contains(string(main), "class MyCoolGame:") || !strings.Contains(string(main), `config.title = "my cool game";`) {
		t.Errorf("unexpected main.cpp:\n%s", main)
	}

	desc, err := project.Load(dest)
	if err != nil {
		t.Fatalf("generated descriptor must be valid: %v", err)
	}
	if desc.Name != "my cool game" || desc.Executable != "my_cool_game" {
		t.Errorf("unexpected descriptor %+v", desc)
	}
}

func TestCreate_UnusualNames(t *testing.T) {
	tests := []struct {
		name       string
		executable string
		pkg        string
		title      string
	}{
		{"3D Racer", "game_3d_racer", "com.example.game_3d_racer", `config.title = "3D Racer";`},
		{`My "Cool" Game`, "my_cool_game", "com.example.my_cool_game", `config.title = "My \"Cool\" Game";`},
		{"Café", "cafe", "com.example.cafe", `config.title = "Café";`},
		{`Back\Slash Game`, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "game")
			err := Create(dest, tt.name, false, nil)
			if tt.executable == "" {
				if err == nil {
					t.Fatal("expected the name to be rejected")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			desc, err := project.Load(dest)
			if err != nil {
				t.Fatalf("generated descriptor must be valid: %v", err)
			}
			if desc.Name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, desc.Name)
			}
			if desc.Executable != tt.executable {
				t.Errorf("expected executable %q, got %q", tt.executable, desc.Executable)
			}
			if desc.Package != tt.pkg {
				t.Errorf("expected package %q, got %q", tt.pkg, desc.Package)
			}

			main, err := os.ReadFile(filepath.Join(dest, "sources", "main.cpp"))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(main), tt.title) {
				t.Errorf("expected %s in main.cpp:\n%s", tt.title, main)
			}
		})
	}
}

func TestCreate_RejectedNameLeavesDiskAlone(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "game")

	if err := Create(dest, "日本", false, nil); err == nil {
		t.Fatal("expected a name without ASCII letters to be rejected")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("expected nothing written, got %v", err)
	}
}

func TestCreate_ExistingWithForce(t *testing.T) {
	dest := t.TempDir()
	stale := filepath.Join(dest, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	asked := false
	confirm := func(string) (bool, error) { asked = true; return false, nil }

	if err := Create(dest, "demo", true, confirm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asked {
		t.Error("force must not prompt")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected the existing directory to be replaced")
	}
}

func TestCreate_ExistingDeclined(t *testing.T) {
	dest := t.TempDir()
	keep := filepath.Join(dest, "keep.txt")
	if err := os.WriteFile(keep, []byte("mine"), 0644); err != nil {
		t.Fatal(err)
	}

	var question string
	confirm := func(q string) (bool, error) { question = q; return false, nil }

	err := Create(dest, "demo", false, confirm)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if !strings.Contains(question, dest) {
		t.Errorf("expected the question to name %s, got %q", dest, question)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("a declined overwrite must leave the directory alone")
	}
}

func TestCreate_ExistingConfirmed(t *testing.T) {
	dest := t.TempDir()
	confirm := func(string) (bool, error) { return true, nil }

	if err := Create(dest, "demo", false, confirm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "tests", "demo.h")); err != nil {
		t.Errorf("expected project files: %v", err)
	}
}

func TestCreate_ConfirmError(t *testing.T) {
	dest := t.TempDir()
	refused := errors.New("not a terminal")

	err := Create(dest, "demo", false, func(string) (bool, error) { return false, refused })
	if !errors.Is(err, refused) {
		t.Fatalf("expected the confirm error, got %v", err)
	}
}

func TestCreate_InvalidName(t *testing.T) {
	for _, name := range []string{"", "---", "a/b"} {
		if err := Create(filepath.Join(t.TempDir(), "x"), name, false, nil); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
