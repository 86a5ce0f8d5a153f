package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRuleSet = "sieve/ruleset/v1"
	DomainOutput  = "sieve/output/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RuleSetHash computes the content-addressed identity of a rule set.
//
// The name is excluded: two configurations with the same rules in the same
// order classify identically and share a hash, whatever they are called or
// which file format they came from. Rule order is included because it
// decides label concatenation.
func RuleSetHash(spec RuleSetSpec) (string, error) {
	canonical, err := MarshalCanonical(IRObject{"rules": rulesToIR(spec.Rules)})
	if err != nil {
		return "", fmt.Errorf("RuleSetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRuleSet, canonical), nil
}

// OutputDigest computes the identity of a produced window. Replay compares
// digests to verify that re-deriving a window reproduces it exactly.
func OutputDigest(ruleSetHash string, start int64, outputs []string) (string, error) {
	canonical, err := MarshalCanonical(IRObject{
		"rule_set_hash": IRString(ruleSetHash),
		"start":         IRInt(start),
		"outputs":       StringArray(outputs),
	})
	if err != nil {
		return "", fmt.Errorf("OutputDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutput, canonical), nil
}

// Compile pairs a spec with its hash and the IR version.
func Compile(spec RuleSetSpec) (CompiledRuleSet, error) {
	hash, err := RuleSetHash(spec)
	if err != nil {
		return CompiledRuleSet{}, err
	}
	return CompiledRuleSet{Hash: hash, IRVersion: IRVersion, Spec: spec}, nil
}

// MustRuleSetHash is like RuleSetHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRuleSetHash(spec RuleSetSpec) string {
	h, err := RuleSetHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}
