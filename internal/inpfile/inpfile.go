// Package inpfile reads Abaqus input decks and the files they include.
package inpfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobbers/jobbers/internal/utils"
)

// ErrDeckNotFound indicates the root input deck does not exist.
var ErrDeckNotFound = errors.New("input file not found")

// maxLineSize bounds a single deck line; node and element blocks can be wide.
const maxLineSize = 1024 * 1024

// Deck is one input file of an analysis.
type Deck struct {
	File           string   // Path as referenced (relative includes are resolved against the including deck)
	Eigenfrequency bool     // Deck contains a *FREQUENCY step
	RestartRead    bool     // Deck contains *RESTART, READ
	RestartFile    string   // Restart job name, attached when a restart workflow is chosen
	Includes       []string // Files this deck references with INPUT=
}

// New returns an unparsed deck for path.
func New(path string) *Deck {
	return &Deck{File: path}
}

// Exists reports whether the deck file is present on disk.
func (d *Deck) Exists() bool {
	return utils.FileExists(d.File)
}

// Stem is the file name without directory and extension.
func (d *Deck) Stem() string {
	return utils.Stem(d.File)
}

func (d *Deck) String() string {
	return fmt.Sprintf("Deck(file=%s, eigenfrequency=%t, restart_read=%t)", d.File, d.Eigenfrequency, d.RestartRead)
}

// Analyze parses the root deck at path and every file it transitively
// includes. The returned list starts with the root and holds each file once,
// in discovery order. Missing includes are listed but not traversed; only a
// failure to read the root deck is an error.
func Analyze(path string) (*Deck, []*Deck, error) {
	root := New(path)
	if !root.Exists() {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeckNotFound, path)
	}
	if err := root.parse(); err != nil {
		return nil, nil, err
	}

	decks := []*Deck{root}
	seen := map[string]bool{cleanKey(path): true}
	traverse(root, &decks, seen)
	return root, decks, nil
}

// Missing returns the decks that are not present on disk.
func Missing(decks []*Deck) []*Deck {
	var out []*Deck
	for _, d := range decks {
		if !d.Exists() {
			out = append(out, d)
		}
	}
	return out
}

// AnyEigenfrequency reports whether any deck in the list declares a
// *FREQUENCY step, as opposed to the root deck's own flag.
func AnyEigenfrequency(decks []*Deck) bool {
	for _, d := range decks {
		if d.Eigenfrequency {
			return true
		}
	}
	return false
}

func traverse(parent *Deck, decks *[]*Deck, seen map[string]bool) {
	for _, inc := range parent.Includes {
		key := cleanKey(inc)
		if seen[key] {
			continue
		}
		seen[key] = true

		child := New(inc)
		*decks = append(*decks, child)
		if !child.Exists() {
			continue
		}
		if err := child.parse(); err != nil {
			utils.PrintWarning("Could not read included file %s: %v", utils.StylePath(inc), err)
			continue
		}
		traverse(child, decks, seen)
	}
}

func cleanKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// parse scans keyword lines. Data lines and ** comments are skipped; keyword
// lines ending in a comma continue on the next line.
func (d *Deck) parse() error {
	file, err := os.Open(d.File)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var pending string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if pending != "" {
			if strings.HasPrefix(line, "**") {
				continue
			}
			pending += line
			if strings.HasSuffix(line, ",") {
				continue
			}
			d.keyword(pending)
			pending = ""
			continue
		}

		if !strings.HasPrefix(line, "*") || strings.HasPrefix(line, "**") {
			continue
		}
		if strings.HasSuffix(line, ",") {
			pending = line
			continue
		}
		d.keyword(line)
	}
	if pending != "" {
		d.keyword(pending)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", d.File, err)
	}
	return nil
}

func (d *Deck) keyword(line string) {
	name, params := parseKeyword(line)
	switch name {
	case "FREQUENCY":
		d.Eigenfrequency = true
	case "RESTART":
		if _, ok := params["READ"]; ok {
			d.RestartRead = true
		}
	}

	if input, ok := params["INPUT"]; ok && input != "" {
		if !filepath.IsAbs(input) {
			input = filepath.Join(filepath.Dir(d.File), input)
		}
		d.Includes = append(d.Includes, input)
	}
}

// parseKeyword splits "*Include, input=part.inp" into ("INCLUDE", {"INPUT": "part.inp"}).
// Keyword and parameter names are case-insensitive; values keep their case.
func parseKeyword(line string) (string, map[string]string) {
	fields := strings.Split(strings.TrimPrefix(line, "*"), ",")
	name := strings.ToUpper(strings.Join(strings.Fields(fields[0]), " "))

	params := make(map[string]string)
	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		key, value, _ := strings.Cut(f, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		params[key] = value
	}
	return name, params
}
