// Package render turns a finished job specification into a SLURM batch script.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/jobbers/jobbers/internal/abaqus"
	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
)

//go:embed templates/*.tmpl
var packaged embed.FS

// ErrTemplateNotFound indicates a template path that is neither a file on
// disk nor the name of a packaged template.
var ErrTemplateNotFound = errors.New("template not found")

var funcs = template.FuncMap{
	"slurmtime": scheduler.FormatSeconds,
	"join":      strings.Join,
	"upper":     strings.ToUpper,
	"base":      filepath.Base,
	"sub":       func(a, b int) int { return a - b },
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

// Packaged lists the names of the templates built into the binary.
func Packaged() []string {
	entries, err := fs.ReadDir(packaged, "templates")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// load returns the template text for name. A file on disk wins; a bare name
// falls back to the packaged templates.
func load(name string) (string, error) {
	if utils.FileExists(name) {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
		utils.PrintDebug("Using template file %s", utils.StylePath(name))
		return string(data), nil
	}

	if name != "" && !strings.ContainsRune(name, os.PathSeparator) && !strings.Contains(name, "/") {
		data, err := packaged.ReadFile(path.Join("templates", name))
		if err == nil {
			utils.PrintDebug("Using packaged template %s", utils.StylePath(name))
			return string(data), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// Render executes the job's template and writes the script to w. Nothing is
// written when loading or executing the template fails.
func Render(job abaqus.Job, w io.Writer) error {
	if err := job.Validate(); err != nil {
		return err
	}

	name := job.TemplatePath()
	text, err := load(name)
	if err != nil {
		return err
	}

	tmpl, err := template.New(filepath.Base(name)).Funcs(funcs).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, job); err != nil {
		return fmt.Errorf("failed to render template %s: %w", name, err)
	}

	_, err = buf.WriteTo(w)
	return err
}

// RenderToFile renders job into path, creating it only after rendering succeeded.
func RenderToFile(job abaqus.Job, path string) error {
	var buf bytes.Buffer
	if err := Render(job, &buf); err != nil {
		return err
	}
	return utils.WriteFile(path, buf.Bytes())
}
