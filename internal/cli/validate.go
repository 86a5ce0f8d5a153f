package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Rules  int                        `json:"rules"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules-file>",
		Short: "Validate a rule configuration",
		Long: `Validate a CUE or YAML rule configuration and report every problem found.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (no rules, non-positive divisor, empty or duplicate label)
  2 - Command error (file not found, undecodable file)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	spec, err := loadSpec(path)
	if err != nil {
		loadErr := &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		errors.As(err, &loadErr)
		if loadErr.Code != ErrCodeNoRules {
			return outputValidateError(formatter, loadErr)
		}
		// A configuration without rules decodes far enough to validate.
		return outputValidationErrors(formatter, []compiler.ValidationError{{
			Field:   "rules",
			Message: "at least one rule is required",
			Code:    compiler.ErrNoRules,
		}})
	}
	formatter.VerboseLog("Decoded %d rule(s) from %s", len(spec.Rules), path)

	if verrs := compiler.Validate(spec); len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Rules: len(spec.Rules)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d rule(s) valid\n", len(spec.Rules))
	return nil
}

// outputValidateError reports a file that could not be decoded at all.
func outputValidateError(formatter *OutputFormatter, loadErr *LoadError) error {
	if err := formatter.Error(loadErr.Code, loadErr.Error(), nil); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, loadErr.Error())
}

// outputValidationErrors reports every validation problem.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.IsJSON() {
		if err := formatter.Success(ValidationResult{Valid: false, Errors: errs}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "✗ Validation failed with %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
