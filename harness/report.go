// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"encoding/json"
	"time"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/params"
)

// RunReport is the outcome of one estimation run. SecurityMargin is the
// admissible log2 ring modulus at the preset's security level minus logQ.
type RunReport struct {
	Preset           string     `json:"preset,omitempty"`
	Config           string     `json:"config"`
	Fingerprint      string     `json:"fingerprint"`
	Method           string     `json:"method"`
	Distribution     string     `json:"distribution"`
	LogQks           float64    `json:"log_qks"`
	Security         string     `json:"security,omitempty"`
	SecurityMargin   *int       `json:"security_margin,omitempty"`
	Gate             string     `json:"gate"`
	Arity            int        `json:"arity"`
	PlaintextModulus uint64     `json:"plaintext_modulus"`
	Mode             string     `json:"mode"`
	KeyGenMillis     float64    `json:"bootstrap_keygen_ms"`
	Sizes            Sizes      `json:"sizes"`
	Artifacts        *Artifacts `json:"artifacts,omitempty"`

	// Noise mode.
	Trials            int      `json:"trials"`
	Failures          int      `json:"failures"`
	EvalMillis        float64  `json:"eval_gate_ms"`
	CiphertextModulus uint64   `json:"ctmodq,omitempty"`
	Summary           *Summary `json:"summary,omitempty"`
	// TargetNoise is the largest noise deviation that keeps the failure
	// probability at 2^TargetFailureLog2.
	TargetFailureLog2 float64 `json:"target_failure_log2,omitempty"`
	TargetNoise       float64 `json:"target_noise,omitempty"`

	// Verify mode.
	Verified bool `json:"verified,omitempty"`
	Gates    int  `json:"gates,omitempty"`
}

func newRunReport(cfg params.SchemeConfig, spec GateSpec, mode Mode, keys *KeyBundle, sizes Sizes, artifacts *Artifacts) *RunReport {
	r := &RunReport{
		Preset:           cfg.Preset(),
		Config:           cfg.String(),
		Fingerprint:      cfg.Fingerprint(),
		Method:           cfg.Method().String(),
		Distribution:     cfg.Distribution().String(),
		LogQks:           cfg.LogQks(),
		Gate:             spec.Gate().String(),
		Arity:            spec.Arity(),
		PlaintextModulus: spec.PlaintextModulus(),
		Mode:             mode.String(),
		KeyGenMillis:     millis(keys.KeyGenTime),
		Sizes:            sizes,
		Artifacts:        artifacts,
	}
	if level, ok := cfg.SecurityLevel(); ok {
		if margin, ok := cfg.SecurityMargin(level); ok {
			r.Security = level.String()
			r.SecurityMargin = &margin
		}
	}
	return r
}

func (r *RunReport) setTrials(stats TrialStatistics, targetFailureLog2 float64) error {
	sum, err := stats.Summary()
	if err != nil {
		return err
	}
	r.Trials = stats.Trials
	r.Failures = stats.Failures
	r.EvalMillis = stats.AverageMillis()
	r.CiphertextModulus = stats.Modulus
	r.Summary = &sum
	if targetFailureLog2 < 0 && stats.Modulus != 0 {
		r.TargetFailureLog2 = targetFailureLog2
		r.TargetNoise = TargetNoise(targetFailureLog2, stats.Plaintext, stats.Modulus, stats.Arity)
	}
	return nil
}

func (r *RunReport) setVerify(res VerifyResult) {
	r.Verified = true
	r.Gates = res.Gates
	r.Gate = engine.AND3.String() + "," + engine.OR3.String()
	r.Arity = 3
	r.PlaintextModulus = params.PlaintextModulus(3)
	if res.Gates > 0 {
		r.EvalMillis = millis(res.EvalTime) / float64(res.Gates)
	}
}

// JSON encodes the report with two-space indentation.
func (r *RunReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
