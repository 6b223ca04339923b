package cmd

import (
	"fmt"

	"github.com/jobbers/jobbers/internal/config"
	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:     "scheduler",
	Aliases: []string{"sched"},
	Short:   "Display the cluster settings used for SLURM jobs",
	Long: `Display the cluster settings jobbers derives SLURM jobs from.

Shows the default partition, shared scratch, cores per node, the configured
resource limits, and whether the current shell is inside a scheduler job.`,
	Example: `  jobbers scheduler           # Show cluster settings
  jobbers sched               # Short alias`,
	Args: cobra.NoArgs,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	store := config.NewStore(nil)

	partition, err := store.String(config.KeyDefaultPartition)
	if err != nil {
		return err
	}
	scratch, err := store.String(config.KeySharedScratch)
	if err != nil {
		return err
	}
	tasks, err := store.Int(config.KeyTasksPerNode)
	if err != nil {
		return err
	}
	limits, err := resourceLimits(store)
	if err != nil {
		return err
	}

	// Structured output goes to stdout without the [JOB] prefix
	fmt.Println("Cluster Settings:")
	fmt.Printf("  Partition:       %s\n", utils.StyleName(partition))
	fmt.Printf("  Shared scratch:  %s\n", utils.StylePath(scratch))
	fmt.Printf("  Tasks per node:  %s\n", utils.StyleNumber(tasks))

	fmt.Println()
	fmt.Println("Resource Limits:")
	if limits == nil {
		fmt.Printf("  %s\n", utils.StyleInfo("none configured"))
	} else {
		if limits.MaxNodes > 0 {
			fmt.Printf("  Max nodes:  %s\n", utils.StyleNumber(limits.MaxNodes))
		}
		if limits.MaxCpus > 0 {
			fmt.Printf("  Max CPUs:   %s\n", utils.StyleNumber(limits.MaxCpus))
		}
		if limits.MaxTime > 0 {
			fmt.Printf("  Max time:   %s\n", utils.StyleNumber(scheduler.FormatTime(limits.MaxTime)))
		}
	}

	fmt.Println()
	if scheduler.IsInsideJob() {
		fmt.Printf("  Status:  %s (inside job)\n", utils.StyleWarning("Allocated"))
		fmt.Println("Scripts written here are meant for sbatch on a login node.")
	} else {
		fmt.Printf("  Status:  %s\n", utils.StyleSuccess("Login shell"))
	}
	return nil
}
