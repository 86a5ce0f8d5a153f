package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/rule"
)

// LoadResult is a rule configuration ready for the engine.
type LoadResult struct {
	Spec     *ir.RuleSetSpec
	Compiled ir.CompiledRuleSet
	Rules    rule.Set
}

// LoadError represents an error that occurred while loading rules.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRules reads, compiles, validates and builds a rule configuration.
// An empty path selects the classic fizz/buzz set.
//
// On failure the first result is nil and every problem found is returned,
// each as a *LoadError.
func LoadRules(path string) (*LoadResult, []error) {
	spec, err := loadSpec(path)
	if err != nil {
		return nil, []error{err}
	}

	if verrs := compiler.Validate(spec); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = &LoadError{Code: v.Code, Message: fmt.Sprintf("%s: %s", v.Field, v.Message)}
		}
		return nil, errs
	}

	rs, err := compiler.Build(spec)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: err.Error()}}
	}
	compiled, err := ir.Compile(*spec)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: err.Error()}}
	}

	return &LoadResult{Spec: spec, Compiled: compiled, Rules: rs}, nil
}

// loadSpec compiles path to a RuleSetSpec without validating it.
func loadSpec(path string) (*ir.RuleSetSpec, error) {
	if path == "" {
		spec, err := compiler.FromSet("classic", rule.Classic())
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		return spec, nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing rules file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading rules file: %v", err)}
	}

	spec, err := compiler.CompileFile(path, data)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return spec, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No scenario files found
	ErrCodeLoadFailed  = "E004" // Rules file could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE schema unification failed
	ErrCodeWriteFailed = "E007" // File write error

	// Rule configuration errors share the compiler's validation codes.
	ErrCodeNoRules        = compiler.ErrNoRules
	ErrCodeDivisor        = compiler.ErrDivisorNotPositive
	ErrCodeLabel          = compiler.ErrLabelEmpty
	ErrCodeDuplicateLabel = compiler.ErrDuplicateLabel
)

// MapFieldToErrorCode maps a compiler error field such as "rules[2].label"
// to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "rules":
		return ErrCodeNoRules
	case strings.HasSuffix(field, ".divisor"):
		return ErrCodeDivisor
	case strings.HasSuffix(field, ".label"):
		return ErrCodeLabel
	case field == "file", field == "yaml":
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}
