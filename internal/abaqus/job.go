package abaqus

import (
	"fmt"

	"github.com/jobbers/jobbers/internal/inpfile"
)

// DefaultLicense is the SLURM license resource Abaqus tokens are drawn from.
const DefaultLicense = "abaqus@slurmdbd"

// Licenses is a SLURM license request, rendered as --licenses=<License>:<Volume>.
type Licenses struct {
	License string `yaml:"license" toml:"license"`
	Volume  int    `yaml:"volume" toml:"volume"`
}

func (l Licenses) String() string {
	return fmt.Sprintf("%s:%d", l.License, l.Volume)
}

// GenericResource is one scheduler option of a generic job, e.g. {Name: "mem", Value: "4G"}.
type GenericResource struct {
	Name  string
	Value string
}

// Job is a finished specification ready for rendering.
type Job interface {
	// TemplatePath is the template file the job renders with.
	TemplatePath() string
	// Validate checks the specification invariants.
	Validate() error
}

// SolveJob is the specification of an Abaqus solve.
//
// Cpus equals Nodes*NtasksPerNode whenever both are set. TimeLimit is in
// seconds, memory fields are in MiB. WorkernodeMem is nil unless a cluster
// default is configured for distributed jobs.
type SolveJob struct {
	Strategy Strategy

	JobName  string
	Template string

	InpFile        *inpfile.Deck
	RestartJobName string

	Nodes         int
	NtasksPerNode int
	Cpus          int
	Gpus          bool

	Partitions []string
	TimeLimit  int
	Scratch    string

	MasternodeMem int
	WorkernodeMem *int

	AbaqusLicenses Licenses
	AbaqusModule   string
}

// TemplatePath implements Job.
func (j *SolveJob) TemplatePath() string { return j.Template }

// Validate implements Job.
func (j *SolveJob) Validate() error {
	switch {
	case j.Template == "":
		return &ValidationError{Field: "template", Reason: "is empty"}
	case j.InpFile == nil:
		return &ValidationError{Field: "inpfile", Reason: "is missing"}
	case j.AbaqusModule == "":
		return &ValidationError{Field: "abaqus_module", Reason: "is empty"}
	case j.Cpus < 1:
		return &ValidationError{Field: "cpus", Reason: fmt.Sprintf("must be at least 1, got %d", j.Cpus)}
	case j.Nodes > 0 && j.NtasksPerNode > 0 && j.Cpus != j.Nodes*j.NtasksPerNode:
		return &ValidationError{
			Field:  "cpus",
			Reason: fmt.Sprintf("%d != nodes (%d) * ntasks_per_node (%d)", j.Cpus, j.Nodes, j.NtasksPerNode),
		}
	case j.TimeLimit < 0:
		return &ValidationError{Field: "timelimit", Reason: "is negative"}
	case j.MasternodeMem < 0:
		return &ValidationError{Field: "masternode_mem", Reason: "is negative"}
	case j.WorkernodeMem != nil && *j.WorkernodeMem < 0:
		return &ValidationError{Field: "workernode_mem", Reason: "is negative"}
	case j.AbaqusLicenses.Volume < 0:
		return &ValidationError{Field: "abaqus_licenses", Reason: "volume is negative"}
	case j.Gpus && j.MasternodeMem != GPUMasternodeMemMiB:
		return &ValidationError{Field: "masternode_mem", Reason: fmt.Sprintf("must be %d for GPU jobs", GPUMasternodeMemMiB)}
	}
	if len(j.Partitions) == 0 {
		return &ValidationError{Field: "partitions", Reason: "is empty"}
	}
	return nil
}

// GenericJob carries a free-form list of scheduler options.
type GenericJob struct {
	Template  string
	Resources []GenericResource
}

// TemplatePath implements Job.
func (j *GenericJob) TemplatePath() string { return j.Template }

// Validate implements Job.
func (j *GenericJob) Validate() error {
	if j.Template == "" {
		return &ValidationError{Field: "template", Reason: "is empty"}
	}
	for _, r := range j.Resources {
		if r.Name == "" {
			return &ValidationError{Field: "generic_resources", Reason: "contains an unnamed resource"}
		}
	}
	return nil
}
