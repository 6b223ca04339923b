package abaqus

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/jobbers/jobbers/internal/config"
	"github.com/jobbers/jobbers/internal/inpfile"
	"github.com/jobbers/jobbers/internal/license"
	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/viper"
)

// fakeAnswers returns canned answers and counts how often each question was asked.
type fakeAnswers struct {
	workflow   string
	inputFile  string
	module     string
	cpus       int
	licenses   Licenses
	partitions []string
	nodes      int
	gpus       bool
	restart    string
	jobName    string
	timeLimit  string
	memory     string
	resources  []GenericResource

	asked map[string]int
}

func (f *fakeAnswers) ask(q string) {
	if f.asked == nil {
		f.asked = make(map[string]int)
	}
	f.asked[q]++
}

func (f *fakeAnswers) Workflow() (Workflow, error) {
	f.ask("workflow")
	if f.workflow == "" {
		return WorkflowSolve, nil
	}
	return Workflow(f.workflow), nil
}

func (f *fakeAnswers) InputFile() (string, error) { f.ask("inputfile"); return f.inputFile, nil }

func (f *fakeAnswers) AbaqusModule() (string, error) {
	f.ask("module")
	if f.module == "" {
		return "ABAQUS/2022", nil
	}
	return f.module, nil
}

func (f *fakeAnswers) Cpus() (int, error) { f.ask("cpus"); return f.cpus, nil }
func (f *fakeAnswers) AbaqusLicenses() (Licenses, error) { f.ask("licenses"); return f.licenses, nil }
func (f *fakeAnswers) Partitions() ([]string, error) { f.ask("partitions"); return f.partitions, nil }
func (f *fakeAnswers) Nodes() (int, error) { f.ask("nodes"); return f.nodes, nil }
func (f *fakeAnswers) Gpus() (bool, error) { f.ask("gpus"); return f.gpus, nil }
func (f *fakeAnswers) RestartFile() (string, error) { f.ask("restart"); return f.restart, nil }

func (f *fakeAnswers) JobName(defaultName string) (string, error) {
	f.ask("jobname")
	if f.jobName == "" {
		return defaultName, nil
	}
	return f.jobName, nil
}

func (f *fakeAnswers) TimeLimit() (string, error) {
	f.ask("timelimit")
	if f.timeLimit == "" {
		return "60", nil
	}
	return f.timeLimit, nil
}

func (f *fakeAnswers) MasternodeMem() (string, error) {
	f.ask("memory")
	if f.memory == "" {
		return "10", nil
	}
	return f.memory, nil
}

func (f *fakeAnswers) GenericResources() ([]GenericResource, error) {
	f.ask("resources")
	return f.resources, nil
}

// recordingConfig remembers every key looked up.
type recordingConfig struct {
	Config
	keys []string
}

func (r *recordingConfig) String(key string) (string, error) {
	r.keys = append(r.keys, key)
	return r.Config.String(key)
}

func newTestConfig(t *testing.T, yaml string) *config.Store {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
			t.Fatalf("failed to read test config: %v", err)
		}
	}
	return config.NewStore(v)
}

// silence routes console output into a buffer for the duration of the test.
func silence(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := utils.Out
	utils.Out = &buf
	t.Cleanup(func() { utils.Out = prev })
	return &buf
}

func TestDistributedFourNodes(t *testing.T) {
	silence(t)

	tests := []struct {
		name       string
		yaml       string
		wantWorker *int
	}{
		{"no worker default", "", nil},
		{"worker default", "abaqus:\n  workernode_mem_default: 180\n", intPtr(175104)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := &fakeAnswers{nodes: 4}
			b := NewBuilder(answers, newTestConfig(t, tt.yaml))
			deck := &inpfile.Deck{File: "beam.inp"}

			out, err := b.Solve(deck, []*inpfile.Deck{deck})
			if err != nil {
				t.Fatalf("Solve error: %v", err)
			}
			job := out.Job.(*SolveJob)

			if job.Strategy != StrategyDistributed {
				t.Errorf("Strategy = %s; want distributed", job.Strategy)
			}
			if job.Cpus != 144 {
				t.Errorf("Cpus = %d; want 144", job.Cpus)
			}
			if want := license.Needed(144); job.AbaqusLicenses.Volume != want {
				t.Errorf("license volume = %d; want %d", job.AbaqusLicenses.Volume, want)
			}
			if job.AbaqusLicenses.License != DefaultLicense {
				t.Errorf("license = %q; want %q", job.AbaqusLicenses.License, DefaultLicense)
			}
			if job.JobName != "beam" {
				t.Errorf("JobName = %q; want beam", job.JobName)
			}
			if !reflect.DeepEqual(job.Partitions, []string{"batch"}) {
				t.Errorf("Partitions = %v; want [batch]", job.Partitions)
			}
			if job.Template != "abaqus-distributed-template.tmpl" {
				t.Errorf("Template = %q", job.Template)
			}
			switch {
			case tt.wantWorker == nil && job.WorkernodeMem != nil:
				t.Errorf("WorkernodeMem = %d; want unset", *job.WorkernodeMem)
			case tt.wantWorker != nil && (job.WorkernodeMem == nil || *job.WorkernodeMem != *tt.wantWorker):
				t.Errorf("WorkernodeMem = %v; want %d", job.WorkernodeMem, *tt.wantWorker)
			}
			if answers.asked["restart"] != 0 {
				t.Error("restart file asked for a deck without *RESTART, READ")
			}
		})
	}
}

func TestEigenfrequencyWithGpus(t *testing.T) {
	silence(t)

	answers := &fakeAnswers{gpus: true, nodes: 8, memory: "64"}
	b := NewBuilder(answers, newTestConfig(t, ""))
	deck := &inpfile.Deck{File: "modes.inp", Eigenfrequency: true}

	out, err := b.Solve(deck, []*inpfile.Deck{deck})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	job := out.Job.(*SolveJob)

	if job.Strategy != StrategyEigenfrequency {
		t.Errorf("Strategy = %s; want eigenfrequency", job.Strategy)
	}
	if job.Nodes != 1 || job.NtasksPerNode != 36 || job.Cpus != 36 {
		t.Errorf("shape = %d nodes x %d tasks = %d cpus; want 1 x 36 = 36", job.Nodes, job.NtasksPerNode, job.Cpus)
	}
	if job.MasternodeMem != GPUMasternodeMemMiB {
		t.Errorf("MasternodeMem = %d; want %d", job.MasternodeMem, GPUMasternodeMemMiB)
	}
	if answers.asked["nodes"] != 0 {
		t.Error("eigenfrequency branch asked for a node count")
	}
	if answers.asked["memory"] != 0 {
		t.Error("GPU job asked for master node memory")
	}
	if job.WorkernodeMem != nil {
		t.Error("eigenfrequency job has worker node memory")
	}
	if job.Template != "abaqus-eigenfrequency-template.tmpl" {
		t.Errorf("Template = %q", job.Template)
	}
}

func TestTasksPerNodeFromConfig(t *testing.T) {
	silence(t)

	b := NewBuilder(&fakeAnswers{nodes: 2}, newTestConfig(t, "cluster:\n  ntasks_per_node: 48\n"))
	deck := &inpfile.Deck{File: "beam.inp"}
	out, err := b.Solve(deck, []*inpfile.Deck{deck})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	job := out.Job.(*SolveJob)
	if job.NtasksPerNode != 48 || job.Cpus != 96 {
		t.Errorf("got %d tasks per node, %d cpus; want 48, 96", job.NtasksPerNode, job.Cpus)
	}
	if job.AbaqusLicenses.Volume != license.Needed(96) {
		t.Errorf("license volume = %d; want %d", job.AbaqusLicenses.Volume, license.Needed(96))
	}
}

func TestDebugWorkflow(t *testing.T) {
	silence(t)

	cfg := &recordingConfig{Config: newTestConfig(t, "")}
	b := NewBuilder(&fakeAnswers{workflow: "debug"}, cfg)
	b.Analyze = func(string) (*inpfile.Deck, []*inpfile.Deck, error) {
		t.Fatal("debug workflow analysed a deck")
		return nil, nil, nil
	}

	out, err := b.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.Job != nil {
		t.Errorf("debug workflow produced a job: %#v", out.Job)
	}
	want := []string{"salloc -p debug -N 1", "srun hostname", "exit"}
	if !reflect.DeepEqual(out.Instructions, want) {
		t.Errorf("Instructions = %q; want %q", out.Instructions, want)
	}
	if len(cfg.keys) != 0 {
		t.Errorf("debug workflow looked up config keys %v", cfg.keys)
	}
}

func TestUnknownWorkflow(t *testing.T) {
	silence(t)

	b := NewBuilder(&fakeAnswers{workflow: "restart"}, newTestConfig(t, ""))
	_, err := b.Run()
	if !errors.Is(err, ErrUnknownWorkflow) {
		t.Fatalf("Run error = %v; want ErrUnknownWorkflow", err)
	}
}

func TestParseWorkflow(t *testing.T) {
	for _, in := range []string{"solve", " Debug ", "GENERIC"} {
		if _, err := ParseWorkflow(in); err != nil {
			t.Errorf("ParseWorkflow(%q) error: %v", in, err)
		}
	}
	if _, err := ParseWorkflow("serial"); !errors.Is(err, ErrUnknownWorkflow) {
		t.Errorf("ParseWorkflow(serial) error = %v; want ErrUnknownWorkflow", err)
	}
}

func TestRunSolveAnalysesAnsweredFile(t *testing.T) {
	silence(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "plate.inp")
	if err := os.WriteFile(path, []byte("*HEADING\n*STEP\n*FREQUENCY\n10\n*END STEP\n"), 0644); err != nil {
		t.Fatal(err)
	}

	answers := &fakeAnswers{inputFile: path}
	b := NewBuilder(answers, newTestConfig(t, ""))
	out, err := b.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	job := out.Job.(*SolveJob)
	if job.Strategy != StrategyEigenfrequency {
		t.Errorf("Strategy = %s; want eigenfrequency", job.Strategy)
	}
	if job.InpFile.File != path {
		t.Errorf("InpFile = %s; want %s", job.InpFile.File, path)
	}

	// --inp skips the question
	answers = &fakeAnswers{}
	b = NewBuilder(answers, newTestConfig(t, ""))
	b.InputFile = path
	if _, err := b.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if answers.asked["inputfile"] != 0 {
		t.Error("input file asked although InputFile was set")
	}
}

func TestMissingIncludeStillSolves(t *testing.T) {
	buf := silence(t)

	dir := t.TempDir()
	rootPath := filepath.Join(dir, "beam.inp")
	if err := os.WriteFile(rootPath, []byte("*INCLUDE, INPUT=gone.inp\n"), 0644); err != nil {
		t.Fatal(err)
	}
	root := &inpfile.Deck{File: rootPath, Includes: []string{"gone.inp"}}
	missing := &inpfile.Deck{File: filepath.Join(dir, "gone.inp")}

	b := NewBuilder(&fakeAnswers{nodes: 1}, newTestConfig(t, ""))
	out, err := b.Solve(root, []*inpfile.Deck{root, missing})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if out.Job == nil {
		t.Fatal("no job derived")
	}
	if len(out.Missing) != 1 || out.Missing[0] != missing {
		t.Errorf("Missing = %v; want only %s", out.Missing, missing.File)
	}
	if !strings.Contains(buf.String(), "Unable to locate from input file") {
		t.Errorf("missing include not reported:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Adding input file to job:") {
		t.Errorf("discovered files not reported:\n%s", buf.String())
	}
}

func TestMalformedMemoryAnswer(t *testing.T) {
	silence(t)

	b := NewBuilder(&fakeAnswers{nodes: 2, memory: "lots"}, newTestConfig(t, ""))
	deck := &inpfile.Deck{File: "beam.inp"}
	_, err := b.Solve(deck, []*inpfile.Deck{deck})
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("error = %v; want ErrInvalidAnswer", err)
	}
	var se *StepError
	if !errors.As(err, &se) || se.Step != "masternode_mem" {
		t.Errorf("error = %v; want failure in step masternode_mem", err)
	}
}

func TestInvalidNodeCount(t *testing.T) {
	silence(t)

	b := NewBuilder(&fakeAnswers{nodes: 0}, newTestConfig(t, ""))
	deck := &inpfile.Deck{File: "beam.inp"}
	if _, err := b.Solve(deck, []*inpfile.Deck{deck}); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("error = %v; want ErrInvalidAnswer", err)
	}
}

func TestMalformedConfigIsFatal(t *testing.T) {
	silence(t)

	b := NewBuilder(&fakeAnswers{nodes: 2}, newTestConfig(t, "abaqus:\n  workernode_mem_default: plenty\n"))
	deck := &inpfile.Deck{File: "beam.inp"}
	_, err := b.Solve(deck, []*inpfile.Deck{deck})
	var ve *config.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v; want config.ValueError", err)
	}
}

func TestTemplateOverrideSkipsConfig(t *testing.T) {
	silence(t)

	cfg := &recordingConfig{Config: newTestConfig(t, "")}
	b := NewBuilder(&fakeAnswers{nodes: 1}, cfg)
	b.Template = "/home/me/my.tmpl"

	deck := &inpfile.Deck{File: "beam.inp"}
	out, err := b.Solve(deck, []*inpfile.Deck{deck})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if got := out.Job.TemplatePath(); got != "/home/me/my.tmpl" {
		t.Errorf("TemplatePath = %q; want override", got)
	}
	for _, key := range cfg.keys {
		switch key {
		case config.KeyDistributedTemplate, config.KeyTemplatesDir:
			t.Errorf("looked up %s despite override", key)
		}
	}
}

func TestTemplatesDirFromConfig(t *testing.T) {
	silence(t)

	cfg := newTestConfig(t, "abaqus:\n  templates_dir: /opt/jobbers/templates\n")

	b := NewBuilder(&fakeAnswers{nodes: 1}, cfg)
	deck := &inpfile.Deck{File: "beam.inp"}
	out, err := b.Solve(deck, []*inpfile.Deck{deck})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	want := filepath.Join("/opt/jobbers/templates", "abaqus-distributed-template.tmpl")
	if got := out.Job.TemplatePath(); got != want {
		t.Errorf("TemplatePath = %q; want %q", got, want)
	}

	b = NewBuilder(&fakeAnswers{workflow: "generic"}, cfg)
	out, err = b.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	want = filepath.Join("/opt/jobbers/templates", GenericTemplate)
	if got := out.Job.TemplatePath(); got != want {
		t.Errorf("generic TemplatePath = %q; want %q", got, want)
	}
}

func TestGenericWorkflow(t *testing.T) {
	silence(t)

	resources := []GenericResource{{Name: "mem", Value: "4G"}, {Name: "time", Value: "01:00:00"}}
	b := NewBuilder(&fakeAnswers{workflow: "generic", resources: resources}, newTestConfig(t, ""))
	b.Analyze = func(string) (*inpfile.Deck, []*inpfile.Deck, error) {
		t.Fatal("generic workflow analysed a deck")
		return nil, nil, nil
	}

	out, err := b.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	job, ok := out.Job.(*GenericJob)
	if !ok {
		t.Fatalf("Job = %T; want *GenericJob", out.Job)
	}
	if job.Template != GenericTemplate {
		t.Errorf("Template = %q; want %q", job.Template, GenericTemplate)
	}
	if !reflect.DeepEqual(job.Resources, resources) {
		t.Errorf("Resources = %v; want %v", job.Resources, resources)
	}
}

func TestSerialStrategy(t *testing.T) {
	silence(t)

	answers := &fakeAnswers{
		cpus:       4,
		licenses:   Licenses{License: "abaqus@slurmdbd", Volume: 3},
		partitions: []string{"debug", "batch"},
	}
	b := NewBuilder(answers, newTestConfig(t, ""))
	b.Serial = true

	deck := &inpfile.Deck{File: "/work/beam.inp", Eigenfrequency: true, RestartRead: true}
	out, err := b.Solve(deck, []*inpfile.Deck{deck})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	job := out.Job.(*SolveJob)

	if job.Strategy != StrategySerial {
		t.Errorf("Strategy = %s; want serial", job.Strategy)
	}
	if job.Cpus != 4 || job.AbaqusLicenses.Volume != 3 {
		t.Errorf("cpus=%d volume=%d; want user answers 4 and 3", job.Cpus, job.AbaqusLicenses.Volume)
	}
	if !reflect.DeepEqual(job.Partitions, []string{"debug", "batch"}) {
		t.Errorf("Partitions = %v; want insertion order kept", job.Partitions)
	}
	if job.Template != "abaqus-solve-template.tmpl" {
		t.Errorf("Template = %q", job.Template)
	}
	for _, q := range []string{"restart", "memory", "timelimit", "nodes"} {
		if answers.asked[q] != 0 {
			t.Errorf("serial branch asked %s", q)
		}
	}
}

func TestRestartRead(t *testing.T) {
	silence(t)

	answers := &fakeAnswers{nodes: 1, restart: "/runs/old/beam-v1.res"}
	b := NewBuilder(answers, newTestConfig(t, ""))
	deck := &inpfile.Deck{File: "beam.inp", RestartRead: true}

	out, err := b.Solve(deck, []*inpfile.Deck{deck})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	job := out.Job.(*SolveJob)
	if job.RestartJobName != "beam-v1" {
		t.Errorf("RestartJobName = %q; want beam-v1", job.RestartJobName)
	}
	if deck.RestartFile != "beam-v1" {
		t.Errorf("deck RestartFile = %q; want beam-v1", deck.RestartFile)
	}

	answers = &fakeAnswers{nodes: 1, restart: "  "}
	deck = &inpfile.Deck{File: "beam.inp", RestartRead: true}
	b = NewBuilder(answers, newTestConfig(t, ""))
	if _, err := b.Solve(deck, []*inpfile.Deck{deck}); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("blank restart file error = %v; want ErrInvalidAnswer", err)
	}
	if deck.RestartFile != "" {
		t.Errorf("failed run attached restart file %q", deck.RestartFile)
	}
}

func TestClusterLimits(t *testing.T) {
	silence(t)

	b := NewBuilder(&fakeAnswers{nodes: 4}, newTestConfig(t, ""))
	b.Limits = &scheduler.ResourceLimits{MaxNodes: 2}
	deck := &inpfile.Deck{File: "beam.inp"}

	_, err := b.Solve(deck, []*inpfile.Deck{deck})
	if !scheduler.IsValidationError(err) {
		t.Fatalf("error = %v; want scheduler.ValidationError", err)
	}

	// 4 nodes at the default 36 tasks per node derive 144 CPUs.
	b.Limits = &scheduler.ResourceLimits{MaxCpus: 100}
	_, err = b.Solve(deck, []*inpfile.Deck{deck})
	var ve *scheduler.ValidationError
	if !errors.As(err, &ve) || ve.Field != "Cpus" || ve.Requested != 144 {
		t.Fatalf("error = %v; want Cpus limit exceeded by 144", err)
	}
}

func TestStepOrder(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     []string
	}{
		{StrategyEigenfrequency, []string{
			"restart", "module", "jobname", "nodes", "gpus", "ntasks_per_node", "cpus",
			"licenses", "scratch", "partitions", "timelimit", "masternode_mem", "template",
		}},
		{StrategyDistributed, []string{
			"restart", "module", "jobname", "nodes", "ntasks_per_node", "cpus",
			"licenses", "scratch", "partitions", "timelimit", "masternode_mem", "workernode_mem", "template",
		}},
		{StrategySerial, []string{"module", "jobname", "cpus", "licenses", "partitions", "template"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			if got := StepNames(tt.strategy); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StepNames = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryAndTimeLimitDerivation(t *testing.T) {
	silence(t)

	memory := map[string]int{
		"1":   972,
		"10":  9728,
		"64":  62259,
		"0.5": 486,
		"1.5": 1459,
		"192": 186777,
	}
	for answer, want := range memory {
		b := NewBuilder(&fakeAnswers{nodes: 1, memory: answer}, newTestConfig(t, ""))
		deck := &inpfile.Deck{File: "beam.inp"}
		out, err := b.Solve(deck, []*inpfile.Deck{deck})
		if err != nil {
			t.Fatalf("memory %s: %v", answer, err)
		}
		if got := out.Job.(*SolveJob).MasternodeMem; got != want {
			t.Errorf("memory %s GiB = %d MiB; want %d", answer, got, want)
		}
	}

	for _, m := range []int{0, 1, 59, 90, 1440, 10080} {
		b := NewBuilder(&fakeAnswers{nodes: 1, timeLimit: strconv.Itoa(m)}, newTestConfig(t, ""))
		deck := &inpfile.Deck{File: "beam.inp"}
		out, err := b.Solve(deck, []*inpfile.Deck{deck})
		if err != nil {
			t.Fatalf("timelimit %d: %v", m, err)
		}
		if got := out.Job.(*SolveJob).TimeLimit; got != m*60 {
			t.Errorf("timelimit %d min = %d s; want %d", m, got, m*60)
		}
	}
}

func TestLicenseVolumeNeverAsked(t *testing.T) {
	silence(t)

	for _, nodes := range []int{1, 2, 3, 4, 8} {
		answers := &fakeAnswers{nodes: nodes, licenses: Licenses{License: "x", Volume: 999}}
		b := NewBuilder(answers, newTestConfig(t, ""))
		deck := &inpfile.Deck{File: "beam.inp"}
		out, err := b.Solve(deck, []*inpfile.Deck{deck})
		if err != nil {
			t.Fatalf("nodes %d: %v", nodes, err)
		}
		job := out.Job.(*SolveJob)
		if job.Cpus != nodes*job.NtasksPerNode {
			t.Errorf("cpus %d != %d * %d", job.Cpus, nodes, job.NtasksPerNode)
		}
		if job.AbaqusLicenses.Volume != license.Needed(job.Cpus) {
			t.Errorf("nodes %d: volume %d; want %d", nodes, job.AbaqusLicenses.Volume, license.Needed(job.Cpus))
		}
		if answers.asked["licenses"] != 0 {
			t.Error("parallel branch asked for licenses")
		}
	}
}

// The root deck's flag decides the strategy. A *FREQUENCY step that only
// appears in an included file is visible through inpfile.AnyEigenfrequency
// but does not switch the branch.
func TestEigenfrequencyRootDeckOnly(t *testing.T) {
	b := &Builder{}

	root := &inpfile.Deck{File: "assembly.inp"}
	included := &inpfile.Deck{File: "modal-step.inp", Eigenfrequency: true}
	decks := []*inpfile.Deck{root, included}

	if got := b.Strategy(root); got != StrategyDistributed {
		t.Errorf("root-only check: Strategy = %s; want distributed", got)
	}
	if !inpfile.AnyEigenfrequency(decks) {
		t.Error("per-file check: AnyEigenfrequency = false; want true")
	}

	root.Eigenfrequency = true
	if got := b.Strategy(root); got != StrategyEigenfrequency {
		t.Errorf("Strategy = %s; want eigenfrequency", got)
	}
}

func TestSolveJobValidate(t *testing.T) {
	valid := func() *SolveJob {
		return &SolveJob{
			Template:      "t.tmpl",
			InpFile:       &inpfile.Deck{File: "a.inp"},
			AbaqusModule:  "ABAQUS/2022",
			Nodes:         2,
			NtasksPerNode: 36,
			Cpus:          72,
			Partitions:    []string{"batch"},
		}
	}
	tests := []struct {
		name   string
		mutate func(*SolveJob)
		field  string
	}{
		{"valid", func(*SolveJob) {}, ""},
		{"no template", func(j *SolveJob) { j.Template = "" }, "template"},
		{"cpus mismatch", func(j *SolveJob) { j.Cpus = 70 }, "cpus"},
		{"gpu without sentinel", func(j *SolveJob) { j.Gpus = true; j.MasternodeMem = 100 }, "masternode_mem"},
		{"no partitions", func(j *SolveJob) { j.Partitions = nil }, "partitions"},
		{"negative worker", func(j *SolveJob) { j.WorkernodeMem = intPtr(-1) }, "workernode_mem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := valid()
			tt.mutate(j)
			err := j.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("error = %v; want ValidationError on %s", err, tt.field)
			}
		})
	}
}

func TestLicensesString(t *testing.T) {
	l := Licenses{License: DefaultLicense, Volume: 40}
	if got := l.String(); got != "abaqus@slurmdbd:40" {
		t.Errorf("String() = %q", got)
	}
}

func intPtr(i int) *int { return &i }
