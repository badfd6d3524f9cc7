// Package template creates new projects from the embedded skeleton.
package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/simulant-engine/simulant-tools/internal/project"
	"github.com/simulant-engine/simulant-tools/pkg/xos"
)

//go:embed all:skeleton
var skeletonFS embed.FS

const skeletonRoot = "skeleton"

// ErrDeclined is returned when the user refuses to overwrite an existing
// directory.
var ErrDeclined = errors.New("project directory exists and overwrite was declined")

// PackagePrefix is the reverse-domain prefix of generated package ids.
const PackagePrefix = "com.example."

// DefaultAuthor is recorded until the author is known.
const DefaultAuthor = "Unknown"

// Placeholder tokens substituted in skeleton names and contents.
const (
	TokenName   = "__project_name__"
	TokenPascal = "__project_name_pascal__"
	TokenSnake  = "__project_name_snake__"
	TokenUpper  = "__project_name_upper__"
)

// substituted lists the extensions whose contents are rendered. Other files
// are copied byte for byte.
var substituted = map[string]bool{
	".cpp":       true,
	".h":         true,
	".hpp":       true,
	".c":         true,
	".txt":       true,
	".json":      true,
	".cmake":     true,
	".md":        true,
	".in":        true,
	".gitignore": true,
}

// sourceExts hold C and C++ code, where the title lands inside string
// literals and must be escaped.
var sourceExts = map[string]bool{
	".cpp": true,
	".h":   true,
	".hpp": true,
	".c":   true,
}

// Variables are the values of the placeholder tokens for one project.
// Pascal, Snake and Upper are ASCII identifiers that never start with a
// digit.
type Variables struct {
	Name   string
	Pascal string
	Snake  string
	Upper  string
}

// NewVariables derives every token value from the project title.
func NewVariables(name string) Variables {
	words := splitWords(name)
	if len(words) > 0 && unicode.IsDigit(rune(words[0][0])) {
		words = append([]string{"game"}, words...)
	}
	snake := snakeCase(words)
	return Variables{
		Name:   name,
		Pascal: pascalize(words),
		Snake:  snake,
		Upper:  strings.ToUpper(snake),
	}
}

// Descriptor returns the simulant.json contents for the project.
func (v Variables) Descriptor() project.Descriptor {
	return project.Descriptor{
		Name:       v.Name,
		Package:    PackagePrefix + v.Snake,
		Executable: v.Snake,
		Author:     DefaultAuthor,
	}
}

func (v Variables) replacer(name string) *strings.Replacer {
	return strings.NewReplacer(
		TokenPascal, v.Pascal,
		TokenSnake, v.Snake,
		TokenUpper, v.Upper,
		TokenName, name,
	)
}

// Create writes a new project called name into dest. An existing dest is
// replaced when force is set, otherwise only after confirm agrees. The name
// is checked before anything on disk changes.
func Create(dest, name string, force bool, confirm func(question string) (bool, error)) error {
	vars := NewVariables(name)
	if vars.Snake == "" || strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid project name %q", name)
	}
	if err := vars.Descriptor().Validate(); err != nil {
		return fmt.Errorf("invalid project name %q: %w", name, err)
	}

	if _, err := os.Stat(dest); err == nil {
		if !force {
			if confirm == nil {
				return ErrDeclined
			}
			ok, err := confirm(fmt.Sprintf("%s already exists. Overwrite it", dest))
			if err != nil {
				return err
			}
			if !ok {
				return ErrDeclined
			}
		}
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dest, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return Render(dest, vars)
}

// Render copies the skeleton into dest, substituting tokens in every path
// and in the contents of recognized files, then writes the descriptor.
func Render(dest string, vars Variables) error {
	r := vars.replacer(vars.Name)
	src := vars.replacer(cString(vars.Name))

	err := fs.WalkDir(skeletonFS, skeletonRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, skeletonRoot), "/")
		target := filepath.Join(dest, filepath.FromSlash(r.Replace(rel)))

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		content, err := skeletonFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", p, err)
		}
		switch ext := path.Ext(p); {
		case sourceExts[ext]:
			content = []byte(src.Replace(string(content)))
		case substituted[ext]:
			content = []byte(r.Replace(string(content)))
		}

		if err := xos.WriteFile(target, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return vars.Descriptor().Save(dest)
}

// cString escapes s for use inside a C string literal.
func cString(s string) string {
	q := strconv.Quote(s)
	return q[1 : len(q)-1]
}

// Pascalize converts a string to ASCII PascalCase.
func Pascalize(s string) string {
	return pascalize(splitWords(s))
}

// SnakeCase converts a string to ASCII snake_case.
func SnakeCase(s string) string {
	return snakeCase(splitWords(s))
}

func pascalize(words []string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = title(strings.ToLower(w))
	}
	return strings.Join(parts, "")
}

func snakeCase(words []string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.ToLower(w)
	}
	return strings.Join(parts, "_")
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// splitWords splits a string into ASCII words. Accents are folded away
// ("Café" -> "Cafe"); other non-ASCII letters separate words.
func splitWords(s string) []string {
	s = foldASCII(s)

	// Handle kebab-case and snake_case
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Handle PascalCase and camelCase
	s = camelBoundary.ReplaceAllString(s, "${1} ${2}")

	return strings.FieldsFunc(s, func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// foldASCII strips combining marks after canonical decomposition.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func title(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
