// Package render fills the launcher templates (package manifest, Electron entry
// point and desktop entry) from a per-app context.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

// Template names. Each is also the file name looked up in an override directory.
const (
	PackageJSON  = "package.json"
	MainJS       = "main.js"
	DesktopEntry = "app.desktop"
)

// Names lists every template the renderer knows about.
var Names = []string{PackageJSON, MainJS, DesktopEntry}

var (
	ErrMissingKey      = errors.New("missing template key")
	ErrUnknownTemplate = errors.New("unknown template")
)

//go:embed templates
var builtin embed.FS

// Context holds the named values substituted into a template.
type Context map[string]string

var missingKeyRe = regexp.MustCompile(`map has no entry for key "([^"]*)"`)

var funcs = template.FuncMap{
	// jsList turns "a,b" into "'a', 'b'" for a JS array literal.
	"jsList": func(list string) string {
		var quoted []string
		for _, item := range strings.Split(list, ",") {
			if item = strings.TrimSpace(item); item != "" {
				quoted = append(quoted, "'"+template.JSEscapeString(item)+"'")
			}
		}
		return strings.Join(quoted, ", ")
	},
	"json": func(s string) (string, error) {
		b, err := json.Marshal(s)
		return string(b), err
	},
	// line keeps desktop entry values on a single line.
	"line": func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	},
}

// Renderer holds the parsed templates. It never mutates them after New returns.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses the built-in templates, replacing any that have a same-named file in
// overrideDir. A missing overrideDir is not an error.
func New(overrideDir string) (*Renderer, error) {
	sources := make(map[string]string, len(Names))
	for _, name := range Names {
		data, err := builtin.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("read built-in template %s: %w", name, err)
		}
		if overrideDir != "" {
			custom, err := os.ReadFile(filepath.Join(overrideDir, name))
			switch {
			case err == nil:
				data = custom
			case !errors.Is(err, os.ErrNotExist):
				return nil, fmt.Errorf("read template %s: %w", name, err)
			}
		}
		sources[name] = string(data)
	}
	return FromSources(sources)
}

// FromSources builds a Renderer from raw template text keyed by name.
func FromSources(sources map[string]string) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(sources))}
	for name, text := range sources {
		t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render returns the named template with every placeholder replaced from ctx.
// A placeholder without a value yields an error wrapping ErrMissingKey.
func (r *Renderer) Render(name string, ctx Context) (string, error) {
	t, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, map[string]string(ctx)); err != nil {
		if m := missingKeyRe.FindStringSubmatch(err.Error()); m != nil {
			return "", fmt.Errorf("render %s: %w %q", name, ErrMissingKey, m[1])
		}
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderAll renders every known template, stopping at the first error.
func (r *Renderer) RenderAll(ctx Context) (map[string]string, error) {
	out := make(map[string]string, len(Names))
	for _, name := range Names {
		s, err := r.Render(name, ctx)
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}
