package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <rules-file>",
		Short: "Compile a rule configuration to canonical IR",
		Long: `Compile a CUE or YAML rule configuration to canonical IR.

The rules are decoded, validated and written as canonical JSON together with
the rule set hash. The hash ignores the set's name, so two configurations
with the same rules in the same order always hash identically.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, errs := LoadRules(path)
	if len(errs) > 0 {
		return formatter.LoadErrors(errs)
	}
	formatter.VerboseLog("Compiled %d rule(s) from %s", len(loaded.Spec.Rules), path)

	data, err := ir.MarshalCanonical(loaded.Compiled.ToIR())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to marshal IR", err)
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			if outErr := formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}
	}

	return outputCompileSuccess(formatter, loaded.Compiled, data, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, compiled ir.CompiledRuleSet, data []byte, outputFile string) error {
	if formatter.IsJSON() {
		return formatter.Success(compiled)
	}

	w := formatter.Writer
	name := compiled.Spec.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "✓ Compiled rule set %s: %d rule(s)\n", name, len(compiled.Spec.Rules))
	for i, r := range compiled.Spec.Rules {
		fmt.Fprintf(w, "  %d. %s%%%d\n", i+1, r.Label, r.Divisor)
	}
	fmt.Fprintf(w, "hash: %s\n", compiled.Hash)

	if outputFile != "" {
		fmt.Fprintf(w, "Output written to: %s\n", outputFile)
		return nil
	}
	fmt.Fprintf(w, "%s\n", data)
	return nil
}
