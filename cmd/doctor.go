package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command. Without --apply it reports like
// check; with --apply it runs the first repairer and reports what is left.
func NewDoctorCmd(checker CheckRunner, repairers ...RepairRunner) *cobra.Command {
	var applyFlag bool
	var jsonOutput bool

	var repairer RepairRunner
	if len(repairers) > 0 {
		repairer = repairers[0]
	}

	cmd := &cobra.Command{
		Use:          "doctor",
		Short:        "Diagnose and fix menu issues",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON := jsonOutput || GetJSON()
			if !applyFlag || GetDryRun() {
				return runCheckAndReport(cmd, checker, asJSON)
			}
			if repairer == nil {
				return ErrNotInProject
			}

			result, err := repairer.Repair(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				writeJSON(cmd.OutOrStdout(), result)
			} else {
				formatRepairHuman(cmd.OutOrStdout(), result)
			}

			if len(result.Unrepaired) > 0 {
				return &UnrepairedError{Count: len(result.Unrepaired)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Apply automatic fixes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func formatRepairHuman(w io.Writer, result *RepairResult) {
	for _, r := range result.Repairs {
		fmt.Fprintf(w, "%s %s: %s -> %s\n", r.Action, r.Type, r.ItemID, r.New)
	}
	errCount, warnCount := countBySeverity(result.Unrepaired)
	formatCheckHuman(w, result.Unrepaired, errCount, warnCount)
	if len(result.Repairs) == 0 && len(result.Unrepaired) == 0 {
		fmt.Fprintln(w, "No issues found")
	}
}
