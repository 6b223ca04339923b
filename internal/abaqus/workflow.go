// Package abaqus derives SLURM job specifications for Abaqus runs.
//
// A Builder asks which workflow to run, analyses the input deck for solve
// workflows, and walks an explicit list of steps for the chosen strategy.
// Answers accumulate in a staging record; the job specification is only
// constructed and validated once every step has run, so a partially derived
// job never reaches the renderer.
package abaqus

import (
	"fmt"
	"strings"
)

// Workflow is the answer to the first question of every run.
type Workflow string

const (
	WorkflowSolve   Workflow = "solve"
	WorkflowDebug   Workflow = "debug"
	WorkflowGeneric Workflow = "generic"
)

// Workflows lists the closed set of workflow answers, in menu order.
var Workflows = []Workflow{WorkflowSolve, WorkflowDebug, WorkflowGeneric}

// ParseWorkflow maps an answer to a Workflow. Anything outside Workflows is
// rejected with ErrUnknownWorkflow.
func ParseWorkflow(s string) (Workflow, error) {
	wf := Workflow(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Workflows {
		if wf == known {
			return wf, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWorkflow, s)
}

// Strategy is the solve sub-workflow that produced a SolveJob.
type Strategy string

const (
	StrategySerial         Strategy = "serial"
	StrategyDistributed    Strategy = "distributed"
	StrategyEigenfrequency Strategy = "eigenfrequency"
)
