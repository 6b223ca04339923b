package cmd

import (
	"fmt"

	"github.com/jobbers/jobbers/internal/inpfile"
	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/cobra"
)

var deckCheckCmd = &cobra.Command{
	Use:   "check <deck.inp>",
	Short: "Check that every file an input deck includes exists",
	Long: `Read an Abaqus input deck, follow its *INCLUDE (and other INPUT=) references,
and report every file together with the flags that choose the solve workflow.

Exits with an error when an included file cannot be found.`,
	Example: `  jobbers check beam.inp`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCheck,
}

func init() {
	rootCmd.AddCommand(deckCheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, decks, err := inpfile.Analyze(args[0])
	if err != nil {
		return err
	}

	for _, d := range decks {
		status := utils.StyleSuccess("ok")
		if !d.Exists() {
			status = utils.StyleError("missing")
		}
		utils.PrintMessage("%s %s", utils.StylePath(d.File), status)
		if d.Eigenfrequency {
			utils.PrintNote("%s contains a *FREQUENCY step", utils.StylePath(d.File))
		}
		if d.RestartRead {
			utils.PrintNote("%s reads a restart file", utils.StylePath(d.File))
		}
	}

	workflow := "distributed"
	if root.Eigenfrequency {
		workflow = "eigenfrequency"
	} else if inpfile.AnyEigenfrequency(decks) {
		utils.PrintWarning("*FREQUENCY appears only in included files; the root deck decides the workflow")
	}
	utils.PrintMessage("Solve workflow: %s", utils.StyleName(workflow))

	if missing := inpfile.Missing(decks); len(missing) > 0 {
		return fmt.Errorf("%d of %d files not found", len(missing), len(decks))
	}
	utils.PrintSuccess("All %s files found", utils.StyleNumber(len(decks)))
	return nil
}
