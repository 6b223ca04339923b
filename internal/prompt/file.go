package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jobbers/jobbers/internal/abaqus"
	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ErrMissingAnswer indicates the answers file does not answer a question
// that the chosen workflow asks.
var ErrMissingAnswer = errors.New("answer missing from answers file")

// fileAnswers is the on-disk layout of an answers file. Pointer fields tell
// an absent answer apart from a zero one.
type fileAnswers struct {
	Workflow         string           `yaml:"workflow" toml:"workflow"`
	InputFile        string           `yaml:"inputfile" toml:"inputfile"`
	AbaqusModule     string           `yaml:"abaqus_module" toml:"abaqus_module"`
	Cpus             *int             `yaml:"cpus" toml:"cpus"`
	AbaqusLicenses   *abaqus.Licenses `yaml:"abaqus_licenses" toml:"abaqus_licenses"`
	Partitions       []string         `yaml:"partitions" toml:"partitions"`
	Nodes            *int             `yaml:"nodes" toml:"nodes"`
	Gpus             *bool            `yaml:"gpus" toml:"gpus"`
	RestartFile      string           `yaml:"restart_file" toml:"restart_file"`
	JobName          string           `yaml:"jobname" toml:"jobname"`
	TimeLimit        interface{}      `yaml:"timelimit" toml:"timelimit"`
	MasternodeMem    interface{}      `yaml:"masternode_mem" toml:"masternode_mem"`
	GenericResources []string         `yaml:"generic_resources" toml:"generic_resources"`
}

// File serves answers from a YAML or TOML answers file, for runs without a
// terminal. Only jobname may be omitted; it falls back to the deck stem.
type File struct {
	Path string
	a    fileAnswers
}

var _ abaqus.Answers = (*File)(nil)

// LoadFile reads an answers file, choosing the format by extension.
// Unknown keys are rejected so that a misspelt answer is not silently ignored.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	f := &File{Path: path}
	switch {
	case utils.IsYaml(path):
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f.a); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
		}
	case utils.IsToml(path):
		md, err := toml.Decode(string(data), &f.a)
		if err != nil {
			return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("unknown keys in answers file %s: %s", path, strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("unsupported answers file %s (use .yaml, .yml or .toml)", path)
	}
	return f, nil
}

func (f *File) missing(key string) error {
	return fmt.Errorf("%w: %s (%s)", ErrMissingAnswer, key, f.Path)
}

func (f *File) Workflow() (abaqus.Workflow, error) {
	if f.a.Workflow == "" {
		return "", f.missing("workflow")
	}
	return abaqus.ParseWorkflow(f.a.Workflow)
}

func (f *File) InputFile() (string, error) {
	if f.a.InputFile == "" {
		return "", f.missing("inputfile")
	}
	return f.a.InputFile, nil
}

func (f *File) AbaqusModule() (string, error) {
	if f.a.AbaqusModule == "" {
		return "", f.missing("abaqus_module")
	}
	return f.a.AbaqusModule, nil
}

func (f *File) Cpus() (int, error) {
	if f.a.Cpus == nil {
		return 0, f.missing("cpus")
	}
	return *f.a.Cpus, nil
}

func (f *File) AbaqusLicenses() (abaqus.Licenses, error) {
	if f.a.AbaqusLicenses == nil {
		return abaqus.Licenses{}, f.missing("abaqus_licenses")
	}
	return *f.a.AbaqusLicenses, nil
}

func (f *File) Partitions() ([]string, error) {
	if len(f.a.Partitions) == 0 {
		return nil, f.missing("partitions")
	}
	return f.a.Partitions, nil
}

func (f *File) Nodes() (int, error) {
	if f.a.Nodes == nil {
		return 0, f.missing("nodes")
	}
	return *f.a.Nodes, nil
}

func (f *File) Gpus() (bool, error) {
	if f.a.Gpus == nil {
		return false, f.missing("gpus")
	}
	return *f.a.Gpus, nil
}

func (f *File) RestartFile() (string, error) {
	if f.a.RestartFile == "" {
		return "", f.missing("restart_file")
	}
	return f.a.RestartFile, nil
}

func (f *File) JobName(defaultName string) (string, error) {
	if f.a.JobName == "" {
		return defaultName, nil
	}
	return f.a.JobName, nil
}

// TimeLimit accepts a number of minutes or a SLURM time string.
func (f *File) TimeLimit() (string, error) {
	return f.scalar("timelimit", f.a.TimeLimit)
}

// MasternodeMem accepts a number of GiB or a size string such as "64G".
func (f *File) MasternodeMem() (string, error) {
	return f.scalar("masternode_mem", f.a.MasternodeMem)
}

func (f *File) scalar(key string, raw interface{}) (string, error) {
	if raw == nil {
		return "", f.missing(key)
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", fmt.Errorf("%w for %s: %v", abaqus.ErrInvalidAnswer, key, err)
	}
	return s, nil
}

// GenericResources are listed as "name=value" strings. An absent list is an
// empty request.
func (f *File) GenericResources() ([]abaqus.GenericResource, error) {
	out := make([]abaqus.GenericResource, 0, len(f.a.GenericResources))
	for _, item := range f.a.GenericResources {
		res, err := parseResource(item)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}
