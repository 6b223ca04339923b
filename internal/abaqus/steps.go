package abaqus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jobbers/jobbers/internal/config"
	"github.com/jobbers/jobbers/internal/inpfile"
	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
)

// step is one stage of a solve derivation. Later steps may read what
// earlier steps staged (cpus needs nodes, licenses need cpus).
type step struct {
	name string
	run  func(*staging) error
}

// staging accumulates answers and derived values until every step has run.
type staging struct {
	b        *Builder
	deck     *inpfile.Deck
	strategy Strategy

	restartJobName string
	module         string
	jobName        string

	nodes         int
	ntasksPerNode int
	cpus          int
	gpus          bool

	licenses   Licenses
	scratch    string
	partitions []string

	timeLimit     int
	masternodeMem int
	workernodeMem *int

	template string
}

func eigenfrequencySteps() []step {
	return []step{
		{"restart", (*staging).restart},
		{"module", (*staging).askModule},
		{"jobname", (*staging).askJobName},
		{"nodes", (*staging).singleNode},
		{"gpus", (*staging).askGpus},
		{"ntasks_per_node", (*staging).tasksPerNode},
		{"cpus", (*staging).cpusFromNodes},
		{"licenses", (*staging).derivedLicenses},
		{"scratch", (*staging).configScratch},
		{"partitions", (*staging).defaultPartition},
		{"timelimit", (*staging).askTimeLimit},
		{"masternode_mem", (*staging).masterMem},
		{"template", templateStep(config.KeyEigenTemplate)},
	}
}

func distributedSteps() []step {
	return []step{
		{"restart", (*staging).restart},
		{"module", (*staging).askModule},
		{"jobname", (*staging).askJobName},
		{"nodes", (*staging).askNodes},
		{"ntasks_per_node", (*staging).tasksPerNode},
		{"cpus", (*staging).cpusFromNodes},
		{"licenses", (*staging).derivedLicenses},
		{"scratch", (*staging).configScratch},
		{"partitions", (*staging).defaultPartition},
		{"timelimit", (*staging).askTimeLimit},
		{"masternode_mem", (*staging).masterMem},
		{"workernode_mem", (*staging).workerMem},
		{"template", templateStep(config.KeyDistributedTemplate)},
	}
}

func serialSteps() []step {
	return []step{
		{"module", (*staging).askModule},
		{"jobname", (*staging).stemJobName},
		{"cpus", (*staging).askCpus},
		{"licenses", (*staging).askLicenses},
		{"partitions", (*staging).askPartitions},
		{"template", templateStep(config.KeySolveTemplate)},
	}
}

func stepsFor(strategy Strategy) []step {
	switch strategy {
	case StrategyEigenfrequency:
		return eigenfrequencySteps()
	case StrategyDistributed:
		return distributedSteps()
	case StrategySerial:
		return serialSteps()
	}
	return nil
}

// StepNames returns the ordered step names of a strategy.
func StepNames(strategy Strategy) []string {
	steps := stepsFor(strategy)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	return names
}

// derive runs every step of strategy, then builds and validates the job.
func (b *Builder) derive(strategy Strategy, deck *inpfile.Deck) (*SolveJob, error) {
	steps := stepsFor(strategy)
	if steps == nil {
		return nil, fmt.Errorf("no steps for solve strategy %q", strategy)
	}

	s := &staging{b: b, deck: deck, strategy: strategy}
	for _, st := range steps {
		if err := st.run(s); err != nil {
			return nil, &StepError{Step: st.name, Err: err}
		}
	}
	return s.finish()
}

func (s *staging) finish() (*SolveJob, error) {
	job := &SolveJob{
		Strategy:       s.strategy,
		JobName:        s.jobName,
		Template:       s.template,
		InpFile:        s.deck,
		RestartJobName: s.restartJobName,
		Nodes:          s.nodes,
		NtasksPerNode:  s.ntasksPerNode,
		Cpus:           s.cpus,
		Gpus:           s.gpus,
		Partitions:     s.partitions,
		TimeLimit:      s.timeLimit,
		Scratch:        s.scratch,
		MasternodeMem:  s.masternodeMem,
		WorkernodeMem:  s.workernodeMem,
		AbaqusLicenses: s.licenses,
		AbaqusModule:   s.module,
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	if s.strategy != StrategySerial {
		shape := scheduler.JobShape{
			Nodes: job.Nodes,
			Cpus:  job.Cpus,
			Time:  time.Duration(job.TimeLimit) * time.Second,
		}
		if err := scheduler.ValidateSpecs(shape, s.b.Limits); err != nil {
			return nil, err
		}
	}

	if s.restartJobName != "" {
		s.deck.RestartFile = s.restartJobName
	}
	return job, nil
}

// --- Identity ---

func (s *staging) restart() error {
	if !s.deck.RestartRead {
		return nil
	}
	file, err := s.b.Answers.RestartFile()
	if err != nil {
		return err
	}
	name := restartJobName(strings.TrimSpace(file))
	if name == "" || name == "." {
		return invalidAnswer("restart file", file, nil)
	}
	s.restartJobName = name
	return nil
}

func (s *staging) askModule() error {
	module, err := s.b.Answers.AbaqusModule()
	if err != nil {
		return err
	}
	module = strings.TrimSpace(module)
	if module == "" {
		return invalidAnswer("abaqus module", module, nil)
	}
	s.module = module
	return nil
}

func (s *staging) askJobName() error {
	name, err := s.b.Answers.JobName(s.deck.Stem())
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.deck.Stem()
	}
	s.jobName = name
	return nil
}

func (s *staging) stemJobName() error {
	s.jobName = s.deck.Stem()
	return nil
}

// --- Compute shape ---

// singleNode pins eigenfrequency solves to one node.
func (s *staging) singleNode() error {
	s.nodes = 1
	return nil
}

func (s *staging) askNodes() error {
	nodes, err := s.b.Answers.Nodes()
	if err != nil {
		return err
	}
	if nodes < 1 {
		return invalidAnswer("nodes", nodes, errors.New("must be at least 1"))
	}
	s.nodes = nodes
	return nil
}

func (s *staging) askGpus() error {
	gpus, err := s.b.Answers.Gpus()
	if err != nil {
		return err
	}
	s.gpus = gpus
	return nil
}

// tasksPerNode takes the cluster's cores per node from config, falling back
// to DefaultTasksPerNode.
func (s *staging) tasksPerNode() error {
	n, err := s.b.Config.Int(config.KeyTasksPerNode)
	switch {
	case errors.Is(err, config.ErrNotFound):
		n = DefaultTasksPerNode
	case err != nil:
		return err
	case n < 1:
		return fmt.Errorf("config %s must be at least 1, got %d", config.KeyTasksPerNode, n)
	}
	s.ntasksPerNode = n
	return nil
}

func (s *staging) cpusFromNodes() error {
	s.cpus = s.nodes * s.ntasksPerNode
	return nil
}

func (s *staging) askCpus() error {
	cpus, err := s.b.Answers.Cpus()
	if err != nil {
		return err
	}
	if cpus < 1 {
		return invalidAnswer("cpus", cpus, errors.New("must be at least 1"))
	}
	s.cpus = cpus
	return nil
}

// --- Licensing ---

// derivedLicenses computes the token volume from cpus; parallel jobs never
// take a user-entered volume.
func (s *staging) derivedLicenses() error {
	name, err := optionalString(s.b.Config, config.KeyLicense)
	if err != nil {
		return err
	}
	if name == "" {
		name = DefaultLicense
	}
	s.licenses = Licenses{License: name, Volume: s.b.Licenses(s.cpus)}
	return nil
}

func (s *staging) askLicenses() error {
	lic, err := s.b.Answers.AbaqusLicenses()
	if err != nil {
		return err
	}
	if lic.Volume < 0 {
		return invalidAnswer("license volume", lic.Volume, errors.New("must not be negative"))
	}
	if strings.TrimSpace(lic.License) == "" {
		lic.License = DefaultLicense
	}
	s.licenses = lic
	return nil
}

// --- Scheduling ---

func (s *staging) configScratch() error {
	scratch, err := s.b.Config.String(config.KeySharedScratch)
	if err != nil {
		return err
	}
	s.scratch = scratch
	return nil
}

func (s *staging) defaultPartition() error {
	partition, err := s.b.Config.String(config.KeyDefaultPartition)
	if err != nil {
		return err
	}
	s.partitions = append(s.partitions, partition)
	return nil
}

func (s *staging) askPartitions() error {
	partitions, err := s.b.Answers.Partitions()
	if err != nil {
		return err
	}
	if len(partitions) == 0 {
		return invalidAnswer("partitions", partitions, errors.New("at least one partition is required"))
	}
	s.partitions = append(s.partitions, partitions...)
	return nil
}

func (s *staging) askTimeLimit() error {
	answer, err := s.b.Answers.TimeLimit()
	if err != nil {
		return err
	}
	seconds, err := parseTimeLimit(answer)
	if err != nil {
		return err
	}
	s.timeLimit = seconds
	return nil
}

// --- Memory ---

// masterMem skips the memory question for GPU jobs and requests
// GPUMasternodeMemMiB instead.
func (s *staging) masterMem() error {
	if s.gpus {
		s.masternodeMem = GPUMasternodeMemMiB
		return nil
	}
	answer, err := s.b.Answers.MasternodeMem()
	if err != nil {
		return err
	}
	mib, err := parseMemoryGiB(answer)
	if err != nil {
		return err
	}
	s.masternodeMem = mib
	return nil
}

// workerMem applies abaqus.workernode_mem_default when configured. An unset
// key leaves workernodeMem nil.
func (s *staging) workerMem() error {
	gib, err := s.b.Config.Float(config.KeyWorkernodeMem)
	if errors.Is(err, config.ErrNotFound) {
		utils.PrintDebug("%s not configured; worker node memory left to the scheduler", config.KeyWorkernodeMem)
		return nil
	}
	if err != nil {
		return err
	}
	if gib < 0 {
		return fmt.Errorf("config %s must not be negative, got %v", config.KeyWorkernodeMem, gib)
	}
	mib, err := MiBFromGiB(gib)
	if err != nil {
		return fmt.Errorf("config %s: %w", config.KeyWorkernodeMem, err)
	}
	s.workernodeMem = &mib
	return nil
}

// --- Template ---

func templateStep(key string) func(*staging) error {
	return func(s *staging) error {
		tmpl, err := s.b.template(key)
		if err != nil {
			return err
		}
		s.template = tmpl
		return nil
	}
}

// optionalString reads key, mapping an unset key to "".
func optionalString(cfg Config, key string) (string, error) {
	val, err := cfg.String(key)
	if errors.Is(err, config.ErrNotFound) {
		return "", nil
	}
	return val, err
}
