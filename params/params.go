// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package params resolves the boolean FHE scheme configuration used by the
// estimator: the lattice and ring dimensions, the moduli, the decomposition
// bases, the noise width, the secret distribution and the bootstrapping
// method.
//
// A configuration comes either from explicit numeric knobs or from a named
// preset. When a preset is named it fixes every numeric field and the secret
// distribution; only the bootstrapping method is taken from the caller.
package params

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/constraints"
)

// Defaults applied to zero-valued knobs.
const (
	DefaultSigma       = 3.19
	DefaultNumAutoKeys = 10
	DefaultRefreshBase = 32
)

// Distribution is the secret key distribution of the LWE scheme.
type Distribution int

const (
	// Gaussian samples the secret from a discrete Gaussian of width sigma.
	Gaussian Distribution = iota
	// UniformTernary samples the secret uniformly from {-1, 0, 1}.
	UniformTernary
)

func (d Distribution) String() string {
	switch d {
	case Gaussian:
		return "GAUSSIAN"
	case UniformTernary:
		return "UNIFORM_TERNARY"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// DistributionFromSelector maps the external selector 0/1 to a Distribution.
func DistributionFromSelector(sel int) (Distribution, error) {
	switch sel {
	case 0:
		return Gaussian, nil
	case 1:
		return UniformTernary, nil
	default:
		return 0, configErrorf(ErrInvalidDistribution, "distribution", "%d", sel)
	}
}

// Method is the bootstrapping technique.
type Method int

const (
	// AP is the Alperin-Sheriff/Peikert accumulator.
	AP Method = iota + 1
	// GINX is the Gama-Izabachene-Nguyen-Xie accumulator.
	GINX
	// LMKCDEY is the automorphism based accumulator.
	LMKCDEY
)

func (m Method) String() string {
	switch m {
	case AP:
		return "AP"
	case GINX:
		return "GINX"
	case LMKCDEY:
		return "LMKCDEY"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// MethodFromSelector maps the external selector 1/2/3 to a Method.
func MethodFromSelector(sel int) (Method, error) {
	switch m := Method(sel); m {
	case AP, GINX, LMKCDEY:
		return m, nil
	default:
		return 0, configErrorf(ErrInvalidTechnique, "technique", "%d", sel)
	}
}

// Literal holds the explicit knobs as supplied by the caller. Distribution and
// Method are raw selectors and are validated by Resolve.
type Literal struct {
	// LatticeDim is the LWE dimension n.
	LatticeDim uint32
	// RingDim is the blind rotation ring dimension N.
	RingDim uint32
	// Modulus is the LWE ciphertext modulus q.
	Modulus uint64
	// LogQ is the bit size of the blind rotation modulus Q.
	LogQ uint32
	// Qks is the key switching modulus, which may exceed 64 bits.
	Qks *big.Int
	// GadgetBase is the refreshing key digit base B_g.
	GadgetBase uint64
	// KeySwitchBase is the key switching digit base B_ks.
	KeySwitchBase uint64
	// RefreshBase is the refreshing key base B_rk used by AP.
	RefreshBase uint64
	// Sigma is the error standard deviation.
	Sigma float64
	// NumAutoKeys is the number of automorphism keys.
	NumAutoKeys uint32
	// Distribution selects the secret distribution: 0 Gaussian, 1 uniform ternary.
	Distribution int
	// Method selects the bootstrapping technique: 1 AP, 2 GINX, 3 LMKCDEY.
	Method int
}

func (l Literal) clone() Literal {
	if l.Qks != nil {
		l.Qks = new(big.Int).Set(l.Qks)
	}
	return l
}

// SchemeConfig is a resolved, immutable scheme configuration.
type SchemeConfig struct {
	lit    Literal
	dist   Distribution
	method Method
	preset string
}

// Resolve builds a SchemeConfig from explicit knobs and an optional preset
// label. It performs no I/O and no key generation; soundness of the numeric
// values is checked by the engine.
func Resolve(explicit Literal, preset string) (SchemeConfig, error) {
	var (
		lit  Literal
		dist Distribution
	)

	if preset != "" {
		p, ok := LookupPreset(preset)
		if !ok {
			return SchemeConfig{}, configErrorf(ErrUnknownPreset, "preset", "%s", preset)
		}
		lit = p.Literal.clone()
		dist = p.Distribution
	} else {
		var err error
		if dist, err = DistributionFromSelector(explicit.Distribution); err != nil {
			return SchemeConfig{}, err
		}
		if !(explicit.Sigma >= 0) {
			return SchemeConfig{}, configErrorf(ErrInvalidSigma, "sigma", "%v", explicit.Sigma)
		}
		lit = explicit.clone()
	}

	method, err := MethodFromSelector(explicit.Method)
	if err != nil {
		return SchemeConfig{}, err
	}

	lit.Sigma = defaultIfZero(lit.Sigma, DefaultSigma)
	lit.NumAutoKeys = defaultIfZero(lit.NumAutoKeys, DefaultNumAutoKeys)
	lit.RefreshBase = defaultIfZero(lit.RefreshBase, DefaultRefreshBase)
	if lit.Qks == nil {
		lit.Qks = new(big.Int)
	}
	lit.Distribution = int(dist)
	lit.Method = int(method)

	return SchemeConfig{lit: lit, dist: dist, method: method, preset: preset}, nil
}

func defaultIfZero[T constraints.Integer | constraints.Float](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

// LatticeDim returns n.
func (c SchemeConfig) LatticeDim() uint32 { return c.lit.LatticeDim }

// RingDim returns N.
func (c SchemeConfig) RingDim() uint32 { return c.lit.RingDim }

// Modulus returns q.
func (c SchemeConfig) Modulus() uint64 { return c.lit.Modulus }

// LogQ returns the bit size of Q.
func (c SchemeConfig) LogQ() uint32 { return c.lit.LogQ }

// Qks returns a copy of the key switching modulus.
func (c SchemeConfig) Qks() *big.Int {
	if c.lit.Qks == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(c.lit.Qks)
}

// GadgetBase returns B_g.
func (c SchemeConfig) GadgetBase() uint64 { return c.lit.GadgetBase }

// KeySwitchBase returns B_ks.
func (c SchemeConfig) KeySwitchBase() uint64 { return c.lit.KeySwitchBase }

// RefreshBase returns B_rk.
func (c SchemeConfig) RefreshBase() uint64 { return c.lit.RefreshBase }

// Sigma returns the error standard deviation.
func (c SchemeConfig) Sigma() float64 { return c.lit.Sigma }

// NumAutoKeys returns the number of automorphism keys.
func (c SchemeConfig) NumAutoKeys() uint32 { return c.lit.NumAutoKeys }

// Distribution returns the secret key distribution.
func (c SchemeConfig) Distribution() Distribution { return c.dist }

// Method returns the bootstrapping technique.
func (c SchemeConfig) Method() Method { return c.method }

// Preset returns the preset label the configuration was resolved from, or "".
func (c SchemeConfig) Preset() string { return c.preset }

// Literal returns the resolved knobs with validated selectors.
func (c SchemeConfig) Literal() Literal { return c.lit.clone() }

// LogQks returns log2(Qks), or 0 when Qks is not positive.
func (c SchemeConfig) LogQks() float64 {
	if c.lit.Qks == nil || c.lit.Qks.Sign() <= 0 {
		return 0
	}
	x := new(big.Float).SetPrec(128).SetInt(c.lit.Qks)
	two := new(big.Float).SetPrec(128).SetInt64(2)
	v, _ := new(big.Float).Quo(bigfloat.Log(x), bigfloat.Log(two)).Float64()
	return v
}

func (c SchemeConfig) String() string {
	return fmt.Sprintf("n=%d N=%d q=%d logQ=%d Qks=%s B_g=%d B_ks=%d B_rk=%d sigma=%g autokeys=%d dist=%s method=%s",
		c.lit.LatticeDim, c.lit.RingDim, c.lit.Modulus, c.lit.LogQ, c.Qks(),
		c.lit.GadgetBase, c.lit.KeySwitchBase, c.lit.RefreshBase,
		c.lit.Sigma, c.lit.NumAutoKeys, c.dist, c.method)
}

// Fingerprint identifies the configuration. Two configurations with the same
// knobs, distribution and method share a fingerprint regardless of whether
// they came from a preset.
func (c SchemeConfig) Fingerprint() string {
	sum := blake2b.Sum256([]byte(c.String()))
	return hex.EncodeToString(sum[:16])
}
