// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/params"
)

// SweepResult is the outcome of one preset in a sweep.
type SweepResult struct {
	Preset string
	Report *RunReport
	Err    error
}

// Sweep runs ModeNoise for every named preset, inferring the technique and the
// arity from the preset name. base supplies the trial count and the failure
// target. A failing preset is recorded and the sweep moves on. A nil presets
// slice sweeps every known preset.
func Sweep(eng engine.Engine, presets []string, base Request, opts Options) []SweepResult {
	if presets == nil {
		presets = params.Presets()
	}
	logger := opts.logger()

	results := make([]SweepResult, 0, len(presets))
	for _, name := range presets {
		req := Request{
			Literal: params.Literal{Method: int(params.MethodFromPresetName(name))},
			Preset:  name,
			Arity:   params.InputsFromPresetName(name),
			Trials:  base.Trials,
			Mode:    ModeNoise,

			TargetFailureLog2: base.TargetFailureLog2,
		}

		report, err := Estimate(eng, req, opts)
		if err != nil {
			logger.Printf("sweep %s: %v", name, err)
		}
		results = append(results, SweepResult{Preset: name, Report: report, Err: err})
	}
	return results
}
