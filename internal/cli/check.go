package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	RulesFile string
	From      int64
	To        int64
}

// CheckResult is the outcome of a cross-check.
type CheckResult struct {
	RuleSetHash string            `json:"rule_set_hash"`
	From        int64             `json:"from"`
	To          int64             `json:"to"`
	Agree       bool              `json:"agree"`
	Mismatch    *harness.Mismatch `json:"mismatch,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Cross-check the direct and overlay evaluators",
		Long: `Classify every position in from..to (inclusive) with both evaluators
and report the first position where they disagree.

Exit codes:
  0 - Evaluators agree on every position
  1 - Evaluators disagree
  2 - Command error (invalid rules, invalid range, etc.)

Examples:
  sieve check --to 100000
  sieve check --rules ./rules.cue --from 1000 --to 2000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RulesFile, "rules", "", "rule configuration (.cue, .yaml); defaults to fizz/buzz")
	cmd.Flags().Int64Var(&opts.From, "from", 0, "first position")
	cmd.Flags().Int64Var(&opts.To, "to", 1000, "last position")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	loaded, errs := LoadRules(opts.RulesFile)
	if len(errs) > 0 {
		return formatter.LoadErrors(errs)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)

	began := time.Now()
	mismatch, err := harness.CrossCheck(ctx, loaded.Rules, opts.From, opts.To)
	if err != nil && ctx.Err() != nil {
		logger.Info("cross-check interrupted", "from", opts.From, "to", opts.To)
		return WrapExitError(ExitCommandError, "cross-check interrupted", err)
	}
	if err != nil {
		return reportEngineError(formatter, "cross-check failed", err)
	}
	logger.Debug("cross-check finished", "from", opts.From, "to", opts.To, "elapsed", time.Since(began))

	result := CheckResult{
		RuleSetHash: loaded.Compiled.Hash,
		From:        opts.From,
		To:          opts.To,
		Agree:       mismatch == nil,
		Mismatch:    mismatch,
	}

	if formatter.IsJSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Agree {
		fmt.Fprintf(formatter.Writer, "✓ direct and overlay agree on %d..%d\n", opts.From, opts.To)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s\n", mismatch)
	}

	if !result.Agree {
		return NewExitError(ExitFailure, fmt.Sprintf("evaluators disagree at position %d", mismatch.Position))
	}
	return nil
}
