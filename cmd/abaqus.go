package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jobbers/jobbers/internal/abaqus"
	"github.com/jobbers/jobbers/internal/config"
	"github.com/jobbers/jobbers/internal/prompt"
	"github.com/jobbers/jobbers/internal/render"
	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	abaqusTemplate string
	abaqusInp      string
	abaqusAnswers  string
	abaqusSerial   bool
)

var abaqusCmd = &cobra.Command{
	Use:   "abaqus OUTPUT",
	Short: "Create a SLURM batch script for an Abaqus run",
	Long: `Ask a short series of questions and write a SLURM batch script for Abaqus.

Workflows:
  solve    Analyse the input deck and derive a parallel job. Decks with a
           *FREQUENCY step run on a single node; all others are distributed.
  debug    Print the commands for an interactive allocation. No script is written.
  generic  Collect free-form SLURM options for a generic job script.

OUTPUT is the script to write; use - to print it to stdout.
Answers can be read from a YAML or TOML file with --answers instead of the terminal.`,
	Example: `  jobbers abaqus beam.sh
  jobbers abaqus -i beam.inp -t ~/templates/site.tmpl beam.sh
  jobbers abaqus --answers answers.yaml - | sbatch`,
	Args: cobra.ExactArgs(1),
	RunE: runAbaqus,
}

func runAbaqus(cmd *cobra.Command, args []string) error {
	output := args[0]

	cmd.Flags().Visit(func(f *pflag.Flag) {
		utils.PrintDebug("Flag --%s=%s", f.Name, f.Value.String())
	})

	if abaqusTemplate != "" && !utils.FileExists(abaqusTemplate) {
		return fmt.Errorf("template file not found: %s", abaqusTemplate)
	}
	if abaqusInp != "" && !utils.FileExists(abaqusInp) {
		return fmt.Errorf("input file not found: %s", abaqusInp)
	}

	store := config.NewStore(nil)
	answers, err := newAnswers(store)
	if err != nil {
		return err
	}
	limits, err := resourceLimits(store)
	if err != nil {
		return err
	}

	b := abaqus.NewBuilder(answers, store)
	b.InputFile = abaqusInp
	b.Template = abaqusTemplate
	b.Serial = abaqusSerial
	b.Limits = limits

	out, err := b.Run()
	if err != nil {
		if scheduler.IsValidationError(err) {
			utils.PrintHint("Cluster limits are set in the cluster.* config keys; see %s",
				utils.StyleCommand("jobbers scheduler"))
		}
		return err
	}

	stdout := cmd.OutOrStdout()
	if out.Workflow == abaqus.WorkflowDebug {
		utils.PrintNote("Run these commands on a login node:")
		for _, line := range out.Instructions {
			fmt.Fprintln(stdout, line)
		}
		return nil
	}

	if scheduler.IsInsideJob() {
		utils.PrintWarning("Running inside a scheduler job. Submit the script from a login node.")
	}

	if output == "-" {
		return render.Render(out.Job, stdout)
	}
	if err := render.RenderToFile(out.Job, output); err != nil {
		return err
	}
	utils.PrintSuccess("Job script written to %s", utils.StylePath(output))
	if job, ok := out.Job.(*abaqus.SolveJob); ok {
		utils.PrintMessage("%s nodes, %s CPUs, %s license tokens, master node memory %s",
			utils.StyleNumber(job.Nodes), utils.StyleNumber(job.Cpus),
			utils.StyleNumber(job.AbaqusLicenses.Volume), utils.FormatMiB(job.MasternodeMem))
	}
	utils.PrintHint("Submit it with: %s", utils.StyleCommand("sbatch "+output))
	return nil
}

// newAnswers returns the answers file provider when --answers is set and a
// terminal session otherwise.
func newAnswers(store *config.Store) (abaqus.Answers, error) {
	if abaqusAnswers != "" {
		utils.PrintDebug("Reading answers from %s", utils.StylePath(abaqusAnswers))
		f, err := prompt.LoadFile(abaqusAnswers)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	if !utils.IsInteractiveInput() {
		utils.PrintDebug("stdin is not a terminal; answers are read line by line")
	}

	modules, err := optionalList(store, config.KeyModules)
	if err != nil {
		return nil, err
	}
	partitions, err := optionalList(store, config.KeyPartitions)
	if err != nil {
		return nil, err
	}
	lic, err := store.String(config.KeyLicense)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}

	return prompt.NewInteractive(os.Stdin, os.Stderr, prompt.Choices{
		Modules:    modules,
		Partitions: partitions,
		License:    lic,
	}), nil
}

func optionalList(store *config.Store, key string) ([]string, error) {
	list, err := store.StringSlice(key)
	if errors.Is(err, config.ErrNotFound) {
		return nil, nil
	}
	return list, err
}

// resourceLimits reads the configured cluster limits. It returns nil when no
// limit is set.
func resourceLimits(store *config.Store) (*scheduler.ResourceLimits, error) {
	maxNodes, err := store.Int(config.KeyMaxNodes)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	maxCpus, err := store.Int(config.KeyMaxCpus)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	maxMinutes, err := store.Int(config.KeyMaxTimeLimit)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	if maxNodes <= 0 && maxCpus <= 0 && maxMinutes <= 0 {
		return nil, nil
	}

	partition, err := store.String(config.KeyDefaultPartition)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	limits := &scheduler.ResourceLimits{Partition: partition}
	if maxNodes > 0 {
		limits.MaxNodes = maxNodes
	}
	if maxCpus > 0 {
		limits.MaxCpus = maxCpus
	}
	if maxMinutes > 0 {
		limits.MaxTime = time.Duration(maxMinutes) * time.Minute
	}
	return limits, nil
}

func init() {
	abaqusCmd.Flags().StringVarP(&abaqusTemplate, "template", "t", "", "Template file to use instead of the configured one")
	abaqusCmd.Flags().StringVarP(&abaqusInp, "inp", "i", "", "Abaqus input file (skips the input file question)")
	abaqusCmd.Flags().StringVarP(&abaqusAnswers, "answers", "a", "", "Read answers from a YAML or TOML file")
	abaqusCmd.Flags().BoolVar(&abaqusSerial, "serial", false, "Solve with the serial single-node template")

	rootCmd.AddCommand(abaqusCmd)
}
