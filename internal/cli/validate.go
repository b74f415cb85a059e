package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/framewalk/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	Path  string `json:"path"`
	Name  string `json:"name,omitempty"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-dir>...",
		Short: "Validate scenario files without running them",
		Long: `Parse and validate scenario files without simulating them.

YAML scenarios are decoded strictly, so unknown fields are errors. CUE
scenarios are checked against the #Scenario schema. A directory argument
validates every scenario file directly inside it.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot read "+arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := harness.DiscoverScenarios(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		formatter.VerboseLog("Found %d scenario file(s) in %s", len(found), arg)
		paths = append(paths, found...)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		fv := FileValidation{Path: path, Valid: true}
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			result.Valid = false
		} else {
			fv.Name = scenario.Name
		}
		result.Files = append(result.Files, fv)
	}

	invalid := 0
	for _, fv := range result.Files {
		if !fv.Valid {
			invalid++
		}
	}

	if formatter.JSON() {
		if !result.Valid {
			msg := fmt.Sprintf("%d invalid scenario file(s)", invalid)
			if err := formatter.Failure(result, ErrCodeInvalid, msg); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", fv.Path, fv.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n  %s\n", fv.Path, fv.Error)
		}
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario file(s)", invalid))
	}
	fmt.Fprintf(w, "All %d scenario file(s) valid\n", len(result.Files))
	return nil
}
