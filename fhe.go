// Package binfhe is a boolean FHE engine built on luxfi/lattice primitives.
//
// Bits are encrypted as LWE samples (stored as the constant coefficient of an
// RLWE ciphertext in a small ring) and every threshold gate is evaluated with
// a single programmable bootstrap:
//   - the operands are summed and shifted so that the count of true inputs
//     lands on [-1, 1] of the test polynomial axis
//   - a blind rotation evaluates a threshold test polynomial
//   - an RLWE key switch and a sample extraction bring the result back to the
//     LWE domain
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package binfhe

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
	"github.com/luxfi/lattice/v7/utils"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/params"
)

// Ring size limits accepted by NewParameters.
const (
	MinLogN     = 4
	MaxLogN     = 16
	MaxLogQ     = 60
	MinModulus  = 4
	minLWEBits  = 3 // LWE modulus bits above log2(2n)
	minRingBits = 2 // blind rotation modulus bits above log2(2N)
)

// ErrInvalidParameters is wrapped by every error NewParameters returns.
var ErrInvalidParameters = errors.New("invalid parameters")

// Parameters holds the rings the engine works in and the decomposition
// parameters of its keys.
type Parameters struct {
	// paramsLWE defines the ring of LWE samples (encrypted bits)
	paramsLWE rlwe.Parameters
	// paramsBR defines the ring of the blind rotation (bootstrapping)
	paramsBR rlwe.Parameters
	// brkParams is the refreshing key decomposition
	brkParams rlwe.EvaluationKeyParameters
	// kskParams is the key switching key decomposition
	kskParams rlwe.EvaluationKeyParameters
	// latticeDim is the support of the LWE secret
	latticeDim int

	cfg params.SchemeConfig
}

// NewParameters maps a scheme configuration onto engine rings. The LWE ring
// has the smallest power of two dimension holding n and an NTT-friendly prime
// modulus of at least the bit size of q, one bit more when that size has none. The blind rotation ring has dimension
// N and an NTT-friendly prime modulus of logQ bits.
func NewParameters(cfg params.SchemeConfig) (p Parameters, err error) {
	n := int(cfg.LatticeDim())
	if n == 0 {
		return p, fmt.Errorf("%w: lattice dimension n must be positive", ErrInvalidParameters)
	}

	ringDim := uint64(cfg.RingDim())
	if ringDim == 0 || ringDim&(ringDim-1) != 0 {
		return p, fmt.Errorf("%w: ring dimension N=%d is not a power of two", ErrInvalidParameters, ringDim)
	}
	logNBR := log2Floor(ringDim)
	if logNBR < MinLogN || logNBR > MaxLogN {
		return p, fmt.Errorf("%w: ring dimension N=%d outside [2^%d, 2^%d]", ErrInvalidParameters, ringDim, MinLogN, MaxLogN)
	}

	logNLWE := max(log2Ceil(uint64(n)), MinLogN)
	if logNLWE > logNBR {
		return p, fmt.Errorf("%w: lattice dimension n=%d exceeds ring dimension N=%d", ErrInvalidParameters, n, ringDim)
	}

	logQ := int(cfg.LogQ())
	if logQ < logNBR+1+minRingBits || logQ > MaxLogQ {
		return p, fmt.Errorf("%w: logQ=%d outside [%d, %d]", ErrInvalidParameters, logQ, logNBR+1+minRingBits, MaxLogQ)
	}

	if cfg.Modulus() < MinModulus {
		return p, fmt.Errorf("%w: ciphertext modulus q=%d below %d", ErrInvalidParameters, cfg.Modulus(), MinModulus)
	}

	qks := cfg.Qks()
	if qks.Sign() <= 0 || qks.Cmp(new(big.Int).Lsh(big.NewInt(1), uint(logQ))) > 0 {
		return p, fmt.Errorf("%w: key switching modulus Qks=%s outside (0, 2^%d]", ErrInvalidParameters, qks, logQ)
	}

	refreshBase := cfg.GadgetBase()
	if cfg.Method() == params.AP {
		refreshBase = cfg.RefreshBase()
	}
	for _, b := range []struct {
		name string
		base uint64
	}{{"B_g", cfg.GadgetBase()}, {"B_ks", cfg.KeySwitchBase()}, {"B_rk", cfg.RefreshBase()}} {
		if b.base < 2 {
			return p, fmt.Errorf("%w: digit base %s=%d below 2", ErrInvalidParameters, b.name, b.base)
		}
	}

	qLWE, err := nttPrime(max(bits.Len64(cfg.Modulus()-1), logNLWE+1+minLWEBits), logNLWE)
	if err != nil {
		return p, fmt.Errorf("%w: LWE modulus: %w", ErrInvalidParameters, err)
	}
	qBR, err := nttPrime(logQ, logNBR)
	if err != nil {
		return p, fmt.Errorf("%w: blind rotation modulus: %w", ErrInvalidParameters, err)
	}

	sigma := cfg.Sigma()
	xe := ring.DiscreteGaussian{Sigma: sigma, Bound: 6 * sigma}

	var xs ring.DistributionParameters = ring.Ternary{P: 2.0 / 3.0}
	if cfg.Distribution() == params.Gaussian {
		xs = ring.DiscreteGaussian{Sigma: sigma, Bound: 6 * sigma}
	}

	if p.paramsLWE, err = rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN:    logNLWE,
		Q:       []uint64{qLWE},
		Xs:      xs,
		Xe:      xe,
		NTTFlag: true,
	}); err != nil {
		return p, fmt.Errorf("%w: LWE ring: %w", ErrInvalidParameters, err)
	}

	if p.paramsBR, err = rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN:    logNBR,
		Q:       []uint64{qBR},
		Xs:      ring.Ternary{P: 2.0 / 3.0},
		Xe:      xe,
		NTTFlag: true,
	}); err != nil {
		return p, fmt.Errorf("%w: blind rotation ring: %w", ErrInvalidParameters, err)
	}

	p.brkParams = rlwe.EvaluationKeyParameters{
		BaseTwoDecomposition: utils.Pointy(max(log2Floor(refreshBase), 1)),
	}
	p.kskParams = rlwe.EvaluationKeyParameters{
		BaseTwoDecomposition: utils.Pointy(max(log2Floor(cfg.KeySwitchBase()), 1)),
	}
	p.latticeDim = n
	p.cfg = cfg

	return p, nil
}

// nttPrime returns a prime congruent to 1 mod 2^(logN+1) of about logQ bits.
// Small sizes may hold no such prime (there is none of 13 bits for 2n = 1024),
// so the search moves up one bit at a time until MaxLogQ.
func nttPrime(logQ, logN int) (uint64, error) {
	if logQ > MaxLogQ {
		return 0, fmt.Errorf("prime size %d bits above %d", logQ, MaxLogQ)
	}

	var err error
	for size := logQ; size <= MaxLogQ; size++ {
		var q uint64
		g := ring.NewNTTFriendlyPrimesGenerator(uint64(size), uint64(2)<<logN)
		if q, err = g.NextAlternatingPrime(); err == nil {
			return q, nil
		}
	}
	return 0, err
}

// LatticeDim returns the LWE dimension n.
func (p Parameters) LatticeDim() int {
	return p.latticeDim
}

// NLWE returns the dimension of the LWE ring.
func (p Parameters) NLWE() int {
	return p.paramsLWE.N()
}

// NBR returns the blind rotation dimension
func (p Parameters) NBR() int {
	return p.paramsBR.N()
}

// QLWE returns the LWE modulus
func (p Parameters) QLWE() uint64 {
	return p.paramsLWE.Q()[0]
}

// QBR returns the blind rotation modulus
func (p Parameters) QBR() uint64 {
	return p.paramsBR.Q()[0]
}

// Config returns the scheme configuration the parameters were built from.
func (p Parameters) Config() params.SchemeConfig {
	return p.cfg
}

// SecretKey contains the LWE and RLWE secret keys
type SecretKey struct {
	// SKLWE encrypts bits; its support is the first n coefficients.
	SKLWE *rlwe.SecretKey
	// SKBR is the blind rotation secret.
	SKBR *rlwe.SecretKey
	// SKExt is SKLWE embedded in the blind rotation ring, the target of the
	// key switch and the key of Fresh ciphertexts.
	SKExt *rlwe.SecretKey
}

// BootstrapKey contains the keys needed for bootstrapping
type BootstrapKey struct {
	// BRK is the blind rotation key (RGSW encryptions of the LWE secret)
	BRK blindrot.MemBlindRotationEvaluationKeySet
	// KSK switches blind rotation outputs from SKBR to SKExt.
	KSK *rlwe.EvaluationKey
	// TestPolys holds the threshold test polynomial of every gate.
	TestPolys map[engine.Gate]*ring.Poly
}

// RefreshKey returns the blind rotation key.
func (bsk *BootstrapKey) RefreshKey() any {
	return bsk.BRK
}

// SwitchKey returns the key switching key.
func (bsk *BootstrapKey) SwitchKey() any {
	return bsk.KSK
}

// Ciphertext represents an encrypted bit
type Ciphertext struct {
	*rlwe.Ciphertext
	Mode engine.Mode
}

// KeyGenerator generates FHE keys
type KeyGenerator struct {
	params  Parameters
	kgenLWE *rlwe.KeyGenerator
	kgenBR  *rlwe.KeyGenerator
}

// NewKeyGenerator creates a new key generator
func NewKeyGenerator(params Parameters) *KeyGenerator {
	return &KeyGenerator{
		params:  params,
		kgenLWE: rlwe.NewKeyGenerator(params.paramsLWE),
		kgenBR:  rlwe.NewKeyGenerator(params.paramsBR),
	}
}

// GenSecretKey generates a new secret key
func (kg *KeyGenerator) GenSecretKey() *SecretKey {
	sklwe := kg.kgenLWE.GenSecretKeyNew()
	kg.restrictSupport(sklwe)

	return &SecretKey{
		SKLWE: sklwe,
		SKBR:  kg.kgenBR.GenSecretKeyNew(),
		SKExt: kg.extendSKLWE(sklwe),
	}
}

// restrictSupport zeroes the LWE secret beyond the lattice dimension so that
// exactly n secret coefficients take part in every phase.
func (kg *KeyGenerator) restrictSupport(sk *rlwe.SecretKey) {
	n := kg.params.latticeDim
	if n >= kg.params.NLWE() {
		return
	}

	ringQ := kg.params.paramsLWE.RingQ()
	ringQ.IMForm(sk.Value.Q, sk.Value.Q)
	ringQ.INTT(sk.Value.Q, sk.Value.Q)
	coeffs := sk.Value.Q.Coeffs[0]
	for i := n; i < len(coeffs); i++ {
		coeffs[i] = 0
	}
	ringQ.NTT(sk.Value.Q, sk.Value.Q)
	ringQ.MForm(sk.Value.Q, sk.Value.Q)
}

// extendSKLWE creates a secret key in the blind rotation ring that has the
// SKLWE coefficients in the first N_LWE positions and zeros elsewhere.
func (kg *KeyGenerator) extendSKLWE(sklwe *rlwe.SecretKey) *rlwe.SecretKey {
	ringQLWE := kg.params.paramsLWE.RingQ()
	ringQBR := kg.params.paramsBR.RingQ()
	qLWE, qBR := kg.params.QLWE(), kg.params.QBR()

	coeffs := sklwe.Value.Q.CopyNew()
	ringQLWE.IMForm(*coeffs, *coeffs)
	ringQLWE.INTT(*coeffs, *coeffs)

	ext := rlwe.NewSecretKey(kg.params.paramsBR)
	dst := ext.Value.Q.Coeffs[0]
	for i, c := range coeffs.Coeffs[0] {
		if c > qLWE>>1 {
			dst[i] = qBR - (qLWE - c)
		} else {
			dst[i] = c
		}
	}

	ringQBR.NTT(ext.Value.Q, ext.Value.Q)
	ringQBR.MForm(ext.Value.Q, ext.Value.Q)

	return ext
}

// GenBootstrapKey generates the refreshing key, the switching key and the
// gate test polynomials.
func (kg *KeyGenerator) GenBootstrapKey(sk *SecretKey) *BootstrapKey {
	brk := blindrot.GenEvaluationKeyNew(kg.params.paramsBR, sk.SKBR, kg.params.paramsLWE, sk.SKLWE, kg.params.brkParams)
	ksk := kg.kgenBR.GenEvaluationKeyNew(sk.SKBR, sk.SKExt, kg.params.kskParams)

	testPolys := make(map[engine.Gate]*ring.Poly, len(engine.Gates))
	for _, gate := range engine.Gates {
		poly := kg.thresholdPolynomial(gate)
		testPolys[gate] = &poly
	}

	return &BootstrapKey{
		BRK:       brk,
		KSK:       ksk,
		TestPolys: testPolys,
	}
}

// thresholdPolynomial builds the test polynomial of a k-input gate. With s
// true inputs the bootstrap sees x = 2s/k - 1, so OR fires above 1/k - 1 and
// AND above 1 - 1/k. The output is +-Q/(4k), which the evaluator shifts to
// {0, Q/(2k)}: the encoding of a bit under p = 2k.
func (kg *KeyGenerator) thresholdPolynomial(gate engine.Gate) ring.Poly {
	k := float64(gate.Arity())
	threshold := 1/k - 1
	if gate.IsAND() {
		threshold = 1 - 1/k
	}

	scale := rlwe.NewScale(float64(kg.params.QBR()) / (4 * k))
	return blindrot.InitTestPolynomial(func(x float64) float64 {
		if x > threshold {
			return 1.0
		}
		return -1.0
	}, scale, kg.params.paramsBR.RingQ(), -1, 1)
}
