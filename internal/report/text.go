// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/luxfi/binfhe-estimator/harness"
)

// TextSink writes reports as "Key: value" lines. The size and timing keys
// are the ones existing parameter tooling scrapes.
type TextSink struct {
	w io.Writer
}

// NewTextSink returns a sink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) Publish(ctx context.Context, r *harness.RunReport) error {
	if r == nil {
		return ErrNilReport
	}

	bw := bufio.NewWriter(s.w)
	line := func(key, format string, args ...any) {
		fmt.Fprintf(bw, "%s: "+format+"\n", append([]any{key}, args...)...)
	}

	if r.Preset != "" {
		line("Preset", "%s", r.Preset)
	}
	line("Config", "%s", r.Config)
	line("Fingerprint", "%s", r.Fingerprint)
	if r.SecurityMargin != nil {
		line("SecurityMargin", "%d bits (%s)", *r.SecurityMargin, r.Security)
	}
	line("BootstrapKeyGenTime", "%.3f milliseconds", r.KeyGenMillis)
	line("BootstrappingKeySize", "%d", r.Sizes.RefreshKey)
	line("KeySwitchingKeySize", "%d", r.Sizes.SwitchKey)
	line("CiphertextSize", "%d", r.Sizes.Ciphertext)
	if a := r.Artifacts; a != nil {
		line("BootstrappingKeyHandle", "%s", a.RefreshKey)
		line("KeySwitchingKeyHandle", "%s", a.SwitchKey)
		line("CiphertextHandle", "%s", a.Ciphertext)
	}
	line("Gate", "%s", r.Gate)
	line("EvalBinGateTime", "%.3f milliseconds", r.EvalMillis)

	if r.Verified {
		line("Verified", "%d gates", r.Gates)
		return bw.Flush()
	}

	line("Trials", "%d", r.Trials)
	line("Failures", "%d", r.Failures)
	if r.CiphertextModulus != 0 {
		line("ctmodq", "%d", r.CiphertextModulus)
	}
	if sum := r.Summary; sum != nil && sum.NoiseStdDev > 0 {
		line("NoiseStdDev", "%g", sum.NoiseStdDev)
		if sum.FailureUnderflow {
			line("FailureLog2", "< %g", sum.FailureLog2)
		} else {
			line("FailureLog2", "%g", sum.FailureLog2)
		}
	}
	if r.TargetNoise > 0 {
		line("TargetNoise", "%g (FailureLog2 %g)", r.TargetNoise, r.TargetFailureLog2)
	}
	return bw.Flush()
}

func (s *TextSink) Close() error { return nil }
