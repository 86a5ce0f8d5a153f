package ir

// RuleSpec describes one divisor rule.
type RuleSpec struct {
	Divisor int64  `json:"divisor" yaml:"divisor"`
	Label   string `json:"label" yaml:"label"`
}

// RuleSetSpec describes an ordered set of divisor rules.
// Rule order is registration order.
type RuleSetSpec struct {
	Name  string     `json:"name,omitempty" yaml:"name,omitempty"`
	Rules []RuleSpec `json:"rules" yaml:"rules"`
}

// ToIR converts the spec to an IRObject for canonical serialization.
// The name is included; RuleSetHash leaves it out.
func (s RuleSetSpec) ToIR() IRObject {
	obj := IRObject{"rules": rulesToIR(s.Rules)}
	if s.Name != "" {
		obj["name"] = IRString(s.Name)
	}
	return obj
}

func rulesToIR(rules []RuleSpec) IRArray {
	arr := make(IRArray, len(rules))
	for i, r := range rules {
		arr[i] = IRObject{
			"divisor": IRInt(r.Divisor),
			"label":   IRString(r.Label),
		}
	}
	return arr
}

// CompiledRuleSet is a rule set spec together with its identity.
type CompiledRuleSet struct {
	Hash      string      `json:"hash"`
	IRVersion string      `json:"ir_version"`
	Spec      RuleSetSpec `json:"spec"`
}

// Run is a recorded, bounded window of classifications.
type Run struct {
	ID            string   `json:"id"`             // UUIDv7 unless overridden
	Seq           int64    `json:"seq"`            // Logical order in the run log
	RuleSetHash   string   `json:"rule_set_hash"`  // See RuleSetHash
	Strategy      string   `json:"strategy"`       // "direct" or "overlay"
	Start         int64    `json:"start"`          // Offset; first position is Start+1
	Count         int64    `json:"count"`          // Number of positions
	Outputs       []string `json:"outputs"`        // One value per position
	OutputDigest  string   `json:"output_digest"`  // See OutputDigest
	EngineVersion string   `json:"engine_version"` // Engine version that produced it
}

// ToIR converts the compiled rule set to an IRObject for canonical
// serialization.
func (c CompiledRuleSet) ToIR() IRObject {
	return IRObject{
		"hash":       IRString(c.Hash),
		"ir_version": IRString(c.IRVersion),
		"spec":       c.Spec.ToIR(),
	}
}
