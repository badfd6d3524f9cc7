// Package packager turns build output into distributable packages: a
// bootable disc image for the console and a Flatpak bundle for linux.
package packager

import (
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var (
	// ErrTemplateNotFound is returned when the boot template file is missing
	// from every toolchain directory.
	ErrTemplateNotFound = errors.New("boot template file not found")

	// ErrBinaryAmbiguous is returned when the build directory does not hold
	// exactly one console executable.
	ErrBinaryAmbiguous = errors.New("expected exactly one executable in the build directory")
)

var templates = template.Must(template.New("packager").
	Funcs(template.FuncMap{"xml": xmlEscape}).
	ParseFS(templatesFS, "templates/*.tmpl"))

// render executes the named embedded template.
func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderIPText renders the disc header description consumed by makeip.
func RenderIPText(name, author string) ([]byte, error) {
	return render("ip.txt.tmpl", struct{ Name, Author string }{name, author})
}
