package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/domain"
)

// FindingPositionGap marks sibling positions that are not numbered 0..n-1.
// It is reported by doctor repairs; check does not emit it.
const FindingPositionGap = "position_gap"

// Severity represents the severity level of a check finding.
type Severity string

const (
	// SeverityError represents an error-level finding.
	SeverityError Severity = Severity(domain.SeverityError)
	// SeverityWarning represents a warning-level finding.
	SeverityWarning Severity = Severity(domain.SeverityWarning)
)

// CheckFinding represents a single finding from the check command.
type CheckFinding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	ItemID   string   `json:"item_id,omitempty"`
}

// CheckResult holds all findings from a check run.
type CheckResult struct {
	Findings []CheckFinding `json:"findings"`
}

// CheckRunner defines the interface for running menu checks.
type CheckRunner interface {
	Check(ctx context.Context) (*CheckResult, error)
}

// FindingsDetectedError is returned when check detects findings.
type FindingsDetectedError struct {
	Errors   int
	Warnings int
}

// Error implements the error interface.
func (e *FindingsDetectedError) Error() string {
	return fmt.Sprintf("check found %d errors, %d warnings", e.Errors, e.Warnings)
}

// ExitCode returns the exit code for findings (always 2).
func (e *FindingsDetectedError) ExitCode() int {
	return 2
}

// RepairAction represents a single repair action performed.
type RepairAction struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	ItemID string `json:"item_id"`
	New    string `json:"new"`
}

// RepairResult holds all repairs and unrepaired findings from a repair run.
type RepairResult struct {
	Repairs    []RepairAction `json:"repairs"`
	Unrepaired []CheckFinding `json:"unrepaired"`
}

// RepairRunner defines the interface for running menu repairs.
type RepairRunner interface {
	Repair(ctx context.Context) (*RepairResult, error)
}

// UnrepairedError is returned when repair leaves unresolved findings.
type UnrepairedError struct {
	Count int
}

// Error implements the error interface.
func (e *UnrepairedError) Error() string {
	return fmt.Sprintf("repair left %d unrepaired findings", e.Count)
}

// ExitCode returns the exit code for unrepaired findings (always 2).
func (e *UnrepairedError) ExitCode() int {
	return 2
}

// checkJSONResponse is the JSON output structure for the check command.
type checkJSONResponse struct {
	Findings []CheckFinding `json:"findings"`
	Summary  struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"summary"`
}

// countBySeverity counts errors and warnings in a slice of findings.
func countBySeverity(findings []CheckFinding) (errCount, warnCount int) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			errCount++
		} else {
			warnCount++
		}
	}
	return
}

// formatCheckJSON writes findings as JSON to w.
func formatCheckJSON(w io.Writer, findings []CheckFinding, errCount, warnCount int) {
	if findings == nil {
		findings = []CheckFinding{}
	}
	out := checkJSONResponse{Findings: findings}
	out.Summary.Errors = errCount
	out.Summary.Warnings = warnCount
	writeJSON(w, out)
}

// formatCheckHuman writes findings as human-readable text to w.
func formatCheckHuman(w io.Writer, findings []CheckFinding, errCount, warnCount int) {
	for _, f := range findings {
		item := f.ItemID
		if item == "" {
			item = "-"
		}
		fmt.Fprintf(w, "%s [%s] %s: %s\n", item, f.Severity, f.Type, f.Message)
	}
	if errCount > 0 || warnCount > 0 {
		fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", errCount, warnCount)
	}
}

// runCheckAndReport runs the checker and formats findings as JSON or human-readable text.
// It returns a FindingsDetectedError if any findings are present.
func runCheckAndReport(cmd *cobra.Command, runner CheckRunner, jsonOutput bool) error {
	if runner == nil {
		return ErrNotInProject
	}
	result, err := runner.Check(cmd.Context())
	if err != nil {
		return err
	}

	errCount, warnCount := countBySeverity(result.Findings)

	if jsonOutput {
		formatCheckJSON(cmd.OutOrStdout(), result.Findings, errCount, warnCount)
	} else {
		formatCheckHuman(cmd.OutOrStdout(), result.Findings, errCount, warnCount)
	}

	if len(result.Findings) > 0 {
		return &FindingsDetectedError{Errors: errCount, Warnings: warnCount}
	}
	return nil
}

// NewCheckCmd creates the check command with the given runner.
func NewCheckCmd(runner CheckRunner) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:          "check",
		Short:        "Validate the menu hierarchy",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckAndReport(cmd, runner, jsonOutput || GetJSON())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
