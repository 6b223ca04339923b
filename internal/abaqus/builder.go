package abaqus

import (
	"fmt"

	"github.com/jobbers/jobbers/internal/config"
	"github.com/jobbers/jobbers/internal/inpfile"
	"github.com/jobbers/jobbers/internal/license"
	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
)

// Answers supplies the user's answers, one method per question. Providers
// return errors instead of re-asking; the builder never retries.
type Answers interface {
	Workflow() (Workflow, error)
	InputFile() (string, error)
	AbaqusModule() (string, error)
	Cpus() (int, error)
	AbaqusLicenses() (Licenses, error)
	Partitions() ([]string, error)
	Nodes() (int, error)
	Gpus() (bool, error)
	RestartFile() (string, error)
	JobName(defaultName string) (string, error)
	TimeLimit() (string, error)     // minutes, or a SLURM time value
	MasternodeMem() (string, error) // GiB
	GenericResources() ([]GenericResource, error)
}

// Config resolves cluster defaults. Getters return an error matching
// config.ErrNotFound for unset keys.
type Config interface {
	String(key string) (string, error)
	Int(key string) (int, error)
	Float(key string) (float64, error)
}

// Analyzer reads a root deck and every file it includes.
type Analyzer func(path string) (*inpfile.Deck, []*inpfile.Deck, error)

// DebugInstructions are printed by the debug workflow.
var DebugInstructions = []string{
	"salloc -p debug -N 1",
	"srun hostname",
	"exit",
}

// Builder runs one workflow per invocation.
type Builder struct {
	Answers  Answers
	Config   Config
	Licenses func(cpus int) int
	Analyze  Analyzer

	// InputFile skips the input file question when set.
	InputFile string
	// Template overrides every template lookup when set.
	Template string
	// Serial selects the serial solve strategy instead of dispatching on the deck.
	Serial bool
	// Limits, when set, bound the derived node count and time limit.
	Limits *scheduler.ResourceLimits
}

// NewBuilder returns a Builder using the packaged license formula and deck parser.
func NewBuilder(answers Answers, cfg Config) *Builder {
	return &Builder{
		Answers:  answers,
		Config:   cfg,
		Licenses: license.Needed,
		Analyze:  inpfile.Analyze,
	}
}

// Outcome is the result of a run. Job is nil for the debug workflow, which
// only carries Instructions.
type Outcome struct {
	Workflow     Workflow
	Job          Job
	Instructions []string

	Decks   []*inpfile.Deck // Every file of the analysed deck, root first
	Missing []*inpfile.Deck // Included files not found on disk
}

// Run asks for the workflow and executes it.
func (b *Builder) Run() (*Outcome, error) {
	wf, err := b.Answers.Workflow()
	if err != nil {
		return nil, err
	}
	utils.PrintDebug("Workflow: %s", utils.StyleName(string(wf)))

	switch wf {
	case WorkflowSolve:
		path := b.InputFile
		if path == "" {
			if path, err = b.Answers.InputFile(); err != nil {
				return nil, err
			}
		}
		deck, decks, err := b.Analyze(path)
		if err != nil {
			return nil, err
		}
		return b.Solve(deck, decks)

	case WorkflowDebug:
		return b.Debug(), nil

	case WorkflowGeneric:
		return b.Generic()

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, wf)
	}
}

// Solve reports the deck's files, then picks the strategy from the root
// deck's own eigenfrequency flag and derives the job.
func (b *Builder) Solve(deck *inpfile.Deck, decks []*inpfile.Deck) (*Outcome, error) {
	for _, d := range decks {
		utils.PrintMessage("Adding input file to job: %s", utils.StylePath(d.File))
	}

	missing := inpfile.Missing(decks)
	for _, d := range missing {
		utils.PrintWarning("--- Unable to locate from input file (No such file?) ---")
		utils.PrintWarning("%s", d)
	}

	strategy := b.Strategy(deck)
	utils.PrintDebug("Solve strategy: %s", utils.StyleName(string(strategy)))

	job, err := b.derive(strategy, deck)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Workflow: WorkflowSolve,
		Job:      job,
		Decks:    decks,
		Missing:  missing,
	}, nil
}

// Strategy returns the solve strategy for deck. Only the root deck's
// Eigenfrequency flag is consulted; a *FREQUENCY step in an included file
// does not switch strategies.
func (b *Builder) Strategy(deck *inpfile.Deck) Strategy {
	switch {
	case b.Serial:
		return StrategySerial
	case deck.Eigenfrequency:
		return StrategyEigenfrequency
	default:
		return StrategyDistributed
	}
}

// Debug returns the manual instructions for an interactive allocation.
func (b *Builder) Debug() *Outcome {
	instructions := make([]string, len(DebugInstructions))
	copy(instructions, DebugInstructions)
	return &Outcome{Workflow: WorkflowDebug, Instructions: instructions}
}

// Generic collects free-form resources and the generic template.
func (b *Builder) Generic() (*Outcome, error) {
	resources, err := b.Answers.GenericResources()
	if err != nil {
		return nil, err
	}

	tmpl, err := b.template("")
	if err != nil {
		return nil, err
	}

	job := &GenericJob{
		Template:  tmpl,
		Resources: resources,
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &Outcome{Workflow: WorkflowGeneric, Job: job}, nil
}

// template resolves the template for a config key. An empty key means the
// fixed generic template name.
func (b *Builder) template(key string) (string, error) {
	if b.Template != "" {
		return b.Template, nil
	}

	name := GenericTemplate
	if key != "" {
		var err error
		if name, err = b.Config.String(key); err != nil {
			return "", err
		}
	}

	dir, err := optionalString(b.Config, config.KeyTemplatesDir)
	if err != nil {
		return "", err
	}
	return ResolveTemplate("", dir, name), nil
}
