// Package prompt provides the answer sources of the abaqus builder: an
// interactive question-and-answer session and a pre-filled answers file.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jobbers/jobbers/internal/abaqus"
	"github.com/jobbers/jobbers/internal/license"
	"github.com/jobbers/jobbers/internal/utils"
)

// ErrNoInput indicates the input stream ended before a question was answered.
var ErrNoInput = errors.New("no answer: input closed")

// Choices are the configured options offered by menu questions.
type Choices struct {
	Modules    []string // Solver modules, e.g. ABAQUS/2022
	Partitions []string // Partitions a serial job may be sent to
	License    string   // License resource for user-entered license requests
}

// Interactive asks each question on a terminal (or any reader/writer pair).
// An unusable answer is returned as an error, never asked again.
type Interactive struct {
	in      *bufio.Reader
	out     io.Writer
	choices Choices

	lastCpus int
}

// NewInteractive reads answers from r and writes questions to w.
func NewInteractive(r io.Reader, w io.Writer, choices Choices) *Interactive {
	if choices.License == "" {
		choices.License = abaqus.DefaultLicense
	}
	return &Interactive{in: bufio.NewReader(r), out: w, choices: choices}
}

var _ abaqus.Answers = (*Interactive)(nil)

// ask prints the question and returns the trimmed reply, or def for an empty one.
func (p *Interactive) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, utils.StyleHint(def))
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w (%s)", ErrNoInput, question)
		}
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *Interactive) askRequired(question, def string) (string, error) {
	answer, err := p.ask(question, def)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("%w for %s: an answer is required", abaqus.ErrInvalidAnswer, strings.ToLower(question))
	}
	return answer, nil
}

func (p *Interactive) askInt(question string, def int) (int, error) {
	answer, err := p.ask(question, strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %q is not a whole number", abaqus.ErrInvalidAnswer, strings.ToLower(question), answer)
	}
	return n, nil
}

// menu lists options and resolves an answer given by number or by value.
func (p *Interactive) menu(question string, options []string, def string) (string, error) {
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	answer, err := p.askRequired(question, def)
	if err != nil {
		return "", err
	}
	return pick(answer, options)
}

func pick(answer string, options []string) (string, error) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("%w: choice %d is out of range 1-%d", abaqus.ErrInvalidAnswer, n, len(options))
		}
		return options[n-1], nil
	}
	for _, opt := range options {
		if strings.EqualFold(opt, answer) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not one of %s", abaqus.ErrInvalidAnswer, answer, strings.Join(options, ", "))
}

func (p *Interactive) Workflow() (abaqus.Workflow, error) {
	options := make([]string, len(abaqus.Workflows))
	for i, wf := range abaqus.Workflows {
		options[i] = string(wf)
	}
	answer, err := p.menu("Workflow", options, options[0])
	if err != nil {
		if errors.Is(err, abaqus.ErrInvalidAnswer) {
			return "", fmt.Errorf("%w: %v", abaqus.ErrUnknownWorkflow, err)
		}
		return "", err
	}
	return abaqus.ParseWorkflow(answer)
}

func (p *Interactive) InputFile() (string, error) {
	return p.askRequired("Input file (.inp)", "")
}

func (p *Interactive) AbaqusModule() (string, error) {
	if len(p.choices.Modules) == 0 {
		return p.askRequired("Abaqus module", "")
	}
	return p.menu("Abaqus module", p.choices.Modules, NewestModule(p.choices.Modules))
}

func (p *Interactive) Cpus() (int, error) {
	n, err := p.askInt("Number of CPUs", 1)
	if err != nil {
		return 0, err
	}
	p.lastCpus = n
	return n, nil
}

// AbaqusLicenses suggests the token count needed for the CPUs asked before.
func (p *Interactive) AbaqusLicenses() (abaqus.Licenses, error) {
	def := license.Needed(p.lastCpus)
	if def < 1 {
		def = license.Needed(1)
	}
	volume, err := p.askInt(fmt.Sprintf("Abaqus license tokens (%s)", p.choices.License), def)
	if err != nil {
		return abaqus.Licenses{}, err
	}
	return abaqus.Licenses{License: p.choices.License, Volume: volume}, nil
}

// Partitions accepts a comma separated list of numbers or names; order is kept.
func (p *Interactive) Partitions() ([]string, error) {
	if len(p.choices.Partitions) == 0 {
		answer, err := p.askRequired("Partitions (comma separated)", "")
		if err != nil {
			return nil, err
		}
		return splitList(answer), nil
	}

	for i, opt := range p.choices.Partitions {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	answer, err := p.askRequired("Partitions (comma separated)", p.choices.Partitions[0])
	if err != nil {
		return nil, err
	}
	var out []string
	for _, item := range splitList(answer) {
		part, err := pick(item, p.choices.Partitions)
		if err != nil {
			return nil, err
		}
		out = append(out, part)
	}
	return out, nil
}

func (p *Interactive) Nodes() (int, error) {
	return p.askInt("Number of nodes", 1)
}

func (p *Interactive) Gpus() (bool, error) {
	answer, err := p.ask("Use GPUs (y/n)", "n")
	if err != nil {
		return false, err
	}
	yes, err := utils.ParseBool(answer)
	if err != nil {
		return false, fmt.Errorf("%w: %v", abaqus.ErrInvalidAnswer, err)
	}
	return yes, nil
}

func (p *Interactive) RestartFile() (string, error) {
	return p.askRequired("Restart file of the previous run", "")
}

func (p *Interactive) JobName(defaultName string) (string, error) {
	return p.ask("Job name", defaultName)
}

func (p *Interactive) TimeLimit() (string, error) {
	return p.askRequired("Time limit in minutes (or D-HH:MM:SS)", "")
}

func (p *Interactive) MasternodeMem() (string, error) {
	return p.askRequired("Memory per node in GiB", "")
}

// GenericResources reads name=value lines until an empty line.
func (p *Interactive) GenericResources() ([]abaqus.GenericResource, error) {
	utils.PrintNote("Enter SLURM options as name=value, one per line. Finish with an empty line.")
	var out []abaqus.GenericResource
	for {
		answer, err := p.ask(fmt.Sprintf("Resource %d", len(out)+1), "")
		if errors.Is(err, ErrNoInput) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return out, nil
		}
		res, err := parseResource(answer)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
}

func parseResource(s string) (abaqus.GenericResource, error) {
	name, value, err := utils.ParseKeyValue(s)
	if err != nil {
		return abaqus.GenericResource{}, fmt.Errorf("%w: %v", abaqus.ErrInvalidAnswer, err)
	}
	return abaqus.GenericResource{Name: name, Value: value}, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
