package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/onecx/workspace-menu/internal/store"
)

func TestContextError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ContextError
		want string
	}{
		{
			name: "op and path",
			err:  &ContextError{Op: "import", Path: "menu.yaml", Err: errors.New("permission denied")},
			want: "import: menu.yaml: permission denied",
		},
		{
			name: "op only",
			err:  &ContextError{Op: "compact", Err: errors.New("invalid selector")},
			want: "compact: invalid selector",
		},
		{
			name: "path only",
			err:  &ContextError{Path: "menu.yaml", Err: errors.New("not found")},
			want: "menu.yaml: not found",
		},
		{
			name: "error only",
			err:  &ContextError{Err: errors.New("unknown error")},
			want: "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextError_Unwrap_ExitCoder(t *testing.T) {
	inner := &FindingsDetectedError{Errors: 2, Warnings: 1}
	err := &ContextError{Op: "check", Err: inner}

	if got := ExitCodeFromError(err); got != 2 {
		t.Errorf("ExitCodeFromError() = %d, want 2", got)
	}
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"findings", &FindingsDetectedError{Errors: 1}, 2},
		{"unrepaired", &UnrepairedError{Count: 3}, 2},
		{"wrapped findings", fmt.Errorf("outer: %w", &FindingsDetectedError{Warnings: 1}), 2},
		{"not in project", ErrNotInProject, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFromError(tt.err); got != tt.want {
				t.Errorf("ExitCodeFromError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrNotInProject_WrapsStoreError(t *testing.T) {
	if !errors.Is(ErrNotInProject, store.ErrNotInProject) {
		t.Error("ErrNotInProject should wrap store.ErrNotInProject")
	}
}

func TestFormatError(t *testing.T) {
	got := FormatError(errors.New("item not found"))

	if got != "wsm: item not found\n" {
		t.Errorf("FormatError() = %q", got)
	}
}

func TestRunCLI(t *testing.T) {
	tests := []struct {
		name       string
		runErr     error
		wantCode   int
		wantStderr string
	}{
		{"success", nil, 0, ""},
		{"plain error", errors.New("boom"), 1, "wsm: boom\n"},
		{"findings", &FindingsDetectedError{Errors: 1}, 2, "wsm: check found 1 errors, 0 warnings\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRootCmd()
			root.AddCommand(&cobra.Command{
				Use:          "sub",
				SilenceUsage: true,
				RunE: func(cmd *cobra.Command, args []string) error {
					fmt.Fprint(cmd.OutOrStdout(), "ran")
					return tt.runErr
				},
			})
			var stdout, stderr bytes.Buffer

			code := RunCLI(context.Background(), root, []string{"sub"}, &stdout, &stderr)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if stdout.String() != "ran" {
				t.Errorf("stdout = %q, want %q", stdout.String(), "ran")
			}
			if stderr.String() != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunCLI_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := RunCLI(context.Background(), BuildCommandTree(nil, nil), []string{"frobnicate"}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "wsm: unknown command") {
		t.Errorf("stderr = %q, want unknown command error", stderr.String())
	}
}
