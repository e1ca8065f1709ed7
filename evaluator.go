// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package binfhe

import (
	"fmt"

	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"

	"github.com/luxfi/binfhe-estimator/engine"
)

// Evaluator evaluates threshold gates on encrypted data.
// It does not hold the secret key: bootstrapping uses the blind rotation key,
// the key switching key, and sample extraction.
type Evaluator struct {
	params   Parameters
	eval     *blindrot.Evaluator
	ksEval   *rlwe.Evaluator
	bsk      *BootstrapKey
	ringQLWE *ring.Ring
	ringQBR  *ring.Ring
}

// NewEvaluator creates a new evaluator with bootstrap key.
func NewEvaluator(params Parameters, bsk *BootstrapKey) *Evaluator {
	return &Evaluator{
		params:   params,
		eval:     blindrot.NewEvaluator(params.paramsBR, params.paramsLWE),
		ksEval:   rlwe.NewEvaluator(params.paramsBR, nil),
		bsk:      bsk,
		ringQLWE: params.paramsLWE.RingQ(),
		ringQBR:  params.paramsBR.RingQ(),
	}
}

// EvalGate evaluates a threshold gate over len(cts) == gate.Arity() operands
// encrypted under p = 2*gate.Arity(). Fresh operands are brought to the LWE
// domain first. The result is a SmallDim ciphertext under the same p.
func (eval *Evaluator) EvalGate(gate engine.Gate, cts ...*Ciphertext) (*Ciphertext, error) {
	k := gate.Arity()
	if k == 0 {
		return nil, fmt.Errorf("eval: unknown gate %v", gate)
	}
	if len(cts) != k {
		return nil, fmt.Errorf("eval: gate %v takes %d inputs, got %d", gate, k, len(cts))
	}

	testPoly, ok := eval.bsk.TestPolys[gate]
	if !ok {
		return nil, fmt.Errorf("eval: no test polynomial for gate %v", gate)
	}

	var sum *rlwe.Ciphertext
	for i, ct := range cts {
		if ct == nil || ct.Ciphertext == nil {
			return nil, fmt.Errorf("eval: operand %d is nil", i)
		}

		op, err := eval.toSmallDim(ct)
		if err != nil {
			return nil, fmt.Errorf("eval: operand %d: %w", i, err)
		}

		if sum == nil {
			sum = op.CopyNew()
			continue
		}
		eval.ringQLWE.Add(sum.Value[0], op.Value[0], sum.Value[0])
		eval.ringQLWE.Add(sum.Value[1], op.Value[1], sum.Value[1])
	}

	// Move the sum of s true inputs from s*q/(2k) to s*q/(2k) - q/4.
	q := eval.params.QLWE()
	addConstant(eval.ringQLWE, sum, q-scaleRound(1, q, 4))

	return eval.bootstrap(sum, testPoly, uint64(k))
}

func (eval *Evaluator) toSmallDim(ct *Ciphertext) (*rlwe.Ciphertext, error) {
	switch ct.Mode {
	case engine.SmallDim:
		if ct.Value[0].N() != eval.params.NLWE() {
			return nil, fmt.Errorf("ring degree %d, want %d", ct.Value[0].N(), eval.params.NLWE())
		}
		return ct.Ciphertext, nil
	case engine.Fresh:
		if ct.Value[0].N() != eval.params.NBR() {
			return nil, fmt.Errorf("ring degree %d, want %d", ct.Value[0].N(), eval.params.NBR())
		}
		return eval.extract(ct.Ciphertext), nil
	default:
		return nil, fmt.Errorf("unknown mode %v", ct.Mode)
	}
}

// bootstrap performs the blind rotation with the given test polynomial, lifts
// the +-Q/(4k) output to {0, Q/(2k)}, key switches to the extended LWE secret
// and extracts an LWE sample.
func (eval *Evaluator) bootstrap(ct *rlwe.Ciphertext, testPoly *ring.Poly, k uint64) (*Ciphertext, error) {
	results, err := eval.eval.Evaluate(ct, map[int]*ring.Poly{0: testPoly}, eval.bsk.BRK)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	ctBR, ok := results[0]
	if !ok {
		return nil, fmt.Errorf("bootstrap: no result for slot 0")
	}

	addConstant(eval.ringQBR, ctBR, scaleRound(1, eval.params.QBR(), 4*k))

	ctKS := rlwe.NewCiphertext(eval.params.paramsBR, 1, ctBR.Level())
	if err := eval.ksEval.ApplyEvaluationKey(ctBR, eval.bsk.KSK, ctKS); err != nil {
		return nil, fmt.Errorf("key switch: %w", err)
	}

	return &Ciphertext{Ciphertext: eval.extract(ctKS), Mode: engine.SmallDim}, nil
}

// extract turns an RLWE ciphertext of the blind rotation ring, encrypted under
// the extended secret, into an LWE ciphertext of the small ring whose constant
// coefficient has the same phase rescaled from Q to q. Coefficients the
// extended secret does not cover are dropped.
func (eval *Evaluator) extract(ctBR *rlwe.Ciphertext) *rlwe.Ciphertext {
	qBR, qLWE := eval.params.QBR(), eval.params.QLWE()
	nBR, nLWE := eval.params.NBR(), eval.params.NLWE()

	c0 := ctBR.Value[0].CopyNew()
	c1 := ctBR.Value[1].CopyNew()

	if ctBR.IsNTT {
		eval.ringQBR.INTT(*c0, *c0)
		eval.ringQBR.INTT(*c1, *c1)
	}

	ctLWE := rlwe.NewCiphertext(eval.params.paramsLWE, 1, eval.params.paramsLWE.MaxLevel())
	ctLWE.Value[0].Zero()
	ctLWE.Value[1].Zero()

	a, b := ctLWE.Value[1].Coeffs[0], ctLWE.Value[0].Coeffs[0]
	b[0] = scaleRound(c0.Coeffs[0][0], qLWE, qBR) % qLWE
	a[0] = scaleRound(c1.Coeffs[0][0], qLWE, qBR) % qLWE
	for j := 1; j < nLWE; j++ {
		a[nLWE-j] = scaleRound(c1.Coeffs[0][nBR-j], qLWE, qBR) % qLWE
	}

	eval.ringQLWE.NTT(ctLWE.Value[0], ctLWE.Value[0])
	eval.ringQLWE.NTT(ctLWE.Value[1], ctLWE.Value[1])
	ctLWE.IsNTT = true

	return ctLWE
}

// addConstant adds c to the constant coefficient of the phase, which is the
// constant coefficient of the first polynomial.
func addConstant(r *ring.Ring, ct *rlwe.Ciphertext, c uint64) {
	r = r.AtLevel(ct.Level())
	if ct.IsNTT {
		// A constant evaluates to itself at every NTT point.
		r.AddScalar(ct.Value[0], c, ct.Value[0])
		return
	}
	q := r.ModuliChain()[0]
	ct.Value[0].Coeffs[0][0] = (ct.Value[0].Coeffs[0][0] + c) % q
}
