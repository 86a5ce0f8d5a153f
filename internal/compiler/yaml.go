package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/ir"
)

// DecodeRulesYAML decodes a YAML rule configuration into a RuleSetSpec.
// Unknown fields are rejected.
func DecodeRulesYAML(data []byte) (*ir.RuleSetSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var spec ir.RuleSetSpec
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CompileError{Field: "yaml", Message: "empty rule configuration"}
		}
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}

	if spec.Rules == nil {
		return nil, &CompileError{Field: "rules", Message: "rules is required"}
	}

	return &spec, nil
}

// CompileFile compiles a rule configuration, choosing the decoder from the
// file extension (.cue, .yaml or .yml).
func CompileFile(filename string, data []byte) (*ir.RuleSetSpec, error) {
	switch ext := filepath.Ext(filename); ext {
	case ".cue":
		return CompileRulesSource(filename, data)
	case ".yaml", ".yml":
		spec, err := DecodeRulesYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return spec, nil
	default:
		return nil, &CompileError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported rule file extension %q (want .cue, .yaml or .yml)", ext),
		}
	}
}
