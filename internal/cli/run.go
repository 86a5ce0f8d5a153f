package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/rule"
	"github.com/roach88/sieve/internal/store"
)

// flushEvery bounds how many values sit in the output buffer of a run.
const flushEvery = 4096

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	RulesFile string
	Strategy  string
	Start     int64
	Count     int64
	Database  string

	// IDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs store.IDGenerator
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	RuleSetHash  string   `json:"rule_set_hash"`
	Strategy     string   `json:"strategy"`
	Start        int64    `json:"start"`
	Count        int64    `json:"count"`
	Values       []string `json:"values"`
	RunID        string   `json:"run_id,omitempty"`
	OutputDigest string   `json:"output_digest,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Produce a window of classifications",
		Long: `Produce classifications of the counting sequence 1, 2, 3, ...

--start is an offset: the first value printed is position start+1, so
"--start 200 --count 5" prints positions 201 through 205. Values are written
one per line. Without --count the sequence is unbounded and runs until
interrupted, which ends the command successfully. An interrupted bounded
window fails (exit 1) and is not recorded.

With --db the window is recorded in the run log so that "sieve replay" can
verify it later. Only bounded windows are recorded.

Examples:
  sieve run --count 15
  sieve run --start 200 --count 5 --rules ./rules.cue
  sieve run --strategy overlay | head -100
  sieve run --count 1000 --db ./sieve.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequence(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RulesFile, "rules", "", "rule configuration (.cue, .yaml); defaults to fizz/buzz")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", string(engine.StrategyDirect), "evaluator (direct|overlay)")
	cmd.Flags().Int64Var(&opts.Start, "start", 0, "offset of the first value (position start+1)")
	cmd.Flags().Int64Var(&opts.Count, "count", 0, "number of values (unbounded when omitted)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the window in this SQLite run log")

	return cmd
}

func runSequence(opts *RunOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	bounded := cmd.Flags().Changed("count")
	if !bounded && opts.Database != "" {
		return NewExitError(ExitCommandError, "--db requires --count: only bounded windows are recorded")
	}
	if !bounded && formatter.IsJSON() {
		return NewExitError(ExitCommandError, "--format json requires --count")
	}

	loaded, errs := LoadRules(opts.RulesFile)
	if len(errs) > 0 {
		return formatter.LoadErrors(errs)
	}

	ev, err := engine.New(engine.Strategy(opts.Strategy), loaded.Rules)
	if err != nil {
		return reportEngineError(formatter, "failed to create evaluator", err)
	}

	var seq *engine.Sequence
	if bounded {
		seq, err = ev.Produce(opts.Start, opts.Count)
	} else {
		seq, err = ev.ProduceUnbounded(opts.Start)
	}
	if err != nil {
		return reportEngineError(formatter, "invalid window", err)
	}

	logger.Debug("producing",
		"rules", loaded.Rules.String(),
		"rule_set_hash", loaded.Compiled.Hash,
		"strategy", opts.Strategy,
		"start", opts.Start,
		"bounded", bounded,
	)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// A second signal gets the default behaviour and kills the process.
	context.AfterFunc(ctx, stop)

	keep := opts.Database != "" || formatter.IsJSON()
	values := []string{}

	w := bufio.NewWriter(cmd.OutOrStdout())
	var n int64
	var interrupted error
	for {
		v, ok, err := seq.NextContext(ctx)
		if err != nil {
			interrupted = err
			break
		}
		if !ok {
			break
		}
		if keep {
			values = append(values, v)
		}
		if !formatter.IsJSON() {
			if _, err := w.WriteString(v + "\n"); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
		}
		if n++; n%flushEvery == 0 {
			if err := w.Flush(); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	if interrupted != nil {
		logger.Info("run interrupted", "values", n, "stopped_at", seq.Position())
		if !bounded {
			return nil
		}
		msg := fmt.Sprintf("run interrupted at position %d after %d of %d value(s)", seq.Position(), n, opts.Count)
		if opts.Database != "" {
			msg += "; nothing recorded"
		}
		return WrapExitError(ExitFailure, msg, interrupted)
	}

	result := RunResult{
		RuleSetHash: loaded.Compiled.Hash,
		Strategy:    opts.Strategy,
		Start:       opts.Start,
		Count:       n,
		Values:      values,
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		run, err := store.NewRecorder(st, opts.IDs).Record(ctx, loaded.Compiled, opts.Strategy, opts.Start, values)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunID = run.ID
		result.OutputDigest = run.OutputDigest
		logger.Info("run recorded", "id", run.ID, "seq", run.Seq, "output_digest", run.OutputDigest)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	return nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// reportEngineError prints an engine or rule error with its code and
// returns a command error.
func reportEngineError(formatter *OutputFormatter, message string, err error) error {
	if outErr := formatter.Error(errorCode(err), err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, message, err)
}

// errorCode extracts the code of an engine or rule error.
func errorCode(err error) string {
	var engineErr *engine.Error
	if errors.As(err, &engineErr) {
		return string(engineErr.Code)
	}
	var ruleErr *rule.Error
	if errors.As(err, &ruleErr) {
		return string(ruleErr.Code)
	}
	return ErrCodeGeneric
}

// describeWindow renders the positions a window covers.
func describeWindow(start, count int64) string {
	if count == 0 {
		return "empty window"
	}
	return fmt.Sprintf("positions %d..%d", start+1, start+count)
}
