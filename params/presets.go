// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"maps"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// SecurityLevel is the target security of a preset.
type SecurityLevel int

const (
	// SecurityToy offers no security and exists for fast experiments.
	SecurityToy SecurityLevel = 0
	// SecurityMedium is above 100 bits against classical and quantum attacks.
	SecurityMedium SecurityLevel = 100
	// Security128 provides 128-bit classical security
	Security128 SecurityLevel = 128
	// Security128Q provides 128-bit post-quantum security
	Security128Q SecurityLevel = 1128
	// Security192 provides 192-bit classical security
	Security192 SecurityLevel = 192
	// Security192Q provides 192-bit post-quantum security
	Security192Q SecurityLevel = 1192
	// Security256 provides 256-bit classical security
	Security256 SecurityLevel = 256
	// Security256Q provides 256-bit post-quantum security
	Security256Q SecurityLevel = 1256
)

func (s SecurityLevel) String() string {
	switch s {
	case SecurityToy:
		return "TOY"
	case SecurityMedium:
		return "MEDIUM"
	case Security128:
		return "STD128"
	case Security128Q:
		return "STD128Q"
	case Security192:
		return "STD192"
	case Security192Q:
		return "STD192Q"
	case Security256:
		return "STD256"
	case Security256Q:
		return "STD256Q"
	}
	return "UNKNOWN"
}

// Preset is a named parameter set labelled like OpenFHE's BINFHE_PARAMSET.
// Derived presets have no published tuple and are built from the two-input
// set of their family by derive.
type Preset struct {
	Name         string
	Security     SecurityLevel
	Inputs       int
	Distribution Distribution
	Derived      bool
	Literal      Literal
}

func preset(name string, sec SecurityLevel, inputs int, dist Distribution,
	logQ, ringDim, latticeDim uint32, q uint64, qks int64, bks, bg, brk uint64) Preset {
	return Preset{
		Name:         name,
		Security:     sec,
		Inputs:       inputs,
		Distribution: dist,
		Literal: Literal{
			LatticeDim:    latticeDim,
			RingDim:       ringDim,
			Modulus:       q,
			LogQ:          logQ,
			Qks:           big.NewInt(qks),
			GadgetBase:    bg,
			KeySwitchBase: bks,
			RefreshBase:   brk,
			Sigma:         DefaultSigma,
			NumAutoKeys:   DefaultNumAutoKeys,
			Distribution:  int(dist),
		},
	}
}

// Ciphertext modulus and ring dimension a derived k-input preset starts from.
var (
	derivedModulus = map[int]uint64{3: 1 << 10, 4: 1 << 11}
	derivedRingDim = uint32(2048)
)

// derive builds the k-input member of a family from its two-input preset.
// q grows to the plaintext room k inputs need, N to at least 2048, and n to
// the smallest dimension that keeps an LWE sample modulo Qks at the family's
// security level.
func derive(base Preset, inputs int) Preset {
	name, suffix, _ := strings.Cut(base.Name, "_")
	name += "_" + strconv.Itoa(inputs)
	if suffix != "" {
		name += "_" + suffix
	}

	v := base
	v.Name = name
	v.Inputs = inputs
	v.Derived = true
	v.Literal = base.Literal.clone()
	v.Literal.Modulus = max(v.Literal.Modulus, derivedModulus[inputs])
	v.Literal.RingDim = max(v.Literal.RingDim, derivedRingDim)
	if dim, ok := EstimateDimension(base.Security, v.Literal.Qks.BitLen()-1); ok {
		v.Literal.LatticeDim = max(v.Literal.LatticeDim, dim)
	}
	return v
}

// presets is closed: the estimator accepts no other labels.
var presets = func() map[string]Preset {
	all := []Preset{
		// name, security, inputs, dist, logQ, N, n, q, Qks, B_ks, B_g, B_rk
		preset("TOY", SecurityToy, 2, UniformTernary, 27, 512, 64, 512, 1<<27, 25, 1<<9, 23),
		preset("MEDIUM", SecurityMedium, 2, UniformTernary, 28, 1024, 422, 1024, 1<<14, 1<<7, 1<<10, 32),
		preset("STD128_AP", Security128, 2, UniformTernary, 27, 1024, 512, 1024, 1<<14, 1<<7, 1<<9, 32),
		preset("STD128", Security128, 2, UniformTernary, 27, 1024, 512, 1024, 1<<14, 1<<7, 1<<9, 32),
		preset("STD128_3", Security128, 3, UniformTernary, 27, 2048, 600, 1024, 1<<15, 1<<5, 1<<9, 32),
		preset("STD128_4", Security128, 4, UniformTernary, 27, 2048, 610, 2048, 1<<15, 1<<5, 1<<7, 32),
		preset("STD128Q", Security128Q, 2, UniformTernary, 25, 1024, 534, 1024, 1<<14, 1<<7, 1<<6, 32),
		preset("STD128Q_3", Security128Q, 3, UniformTernary, 50, 2048, 524, 1024, 1<<25, 32, 1<<25, 32),
		preset("STD128Q_4", Security128Q, 4, UniformTernary, 50, 2048, 544, 2048, 1<<16, 32, 1<<25, 32),
		preset("STD192", Security192, 2, UniformTernary, 37, 2048, 805, 1024, 1<<15, 32, 1<<13, 32),
		preset("STD192Q", Security192Q, 2, UniformTernary, 35, 2048, 875, 1024, 1<<15, 32, 1<<12, 32),
		preset("STD256", Security256, 2, UniformTernary, 29, 2048, 990, 2048, 1<<14, 1<<7, 1<<8, 46),
		preset("STD256Q", Security256Q, 2, UniformTernary, 35, 2048, 1225, 1024, 1<<16, 16, 1<<7, 32),
		preset("STD128_LMKCDEY", Security128, 2, Gaussian, 28, 1024, 446, 1024, 1<<13, 1<<5, 1<<10, 32),
		preset("STD128_3_LMKCDEY", Security128, 3, Gaussian, 28, 2048, 595, 1024, 1<<15, 1<<5, 1<<10, 32),
		preset("STD128_4_LMKCDEY", Security128, 4, Gaussian, 27, 2048, 616, 2048, 1<<15, 1<<5, 1<<7, 32),
		preset("STD128Q_LMKCDEY", Security128Q, 2, Gaussian, 27, 1024, 448, 1024, 1<<13, 1<<6, 1<<9, 32),
		preset("STD192_LMKCDEY", Security192, 2, Gaussian, 39, 2048, 716, 1024, 1<<12, 32, 1<<20, 32),
		preset("STD192Q_LMKCDEY", Security192Q, 2, Gaussian, 36, 2048, 776, 1024, 1<<12, 32, 1<<18, 32),
		preset("STD256_LMKCDEY", Security256, 2, Gaussian, 30, 2048, 939, 1024, 1<<12, 32, 1<<10, 32),
		preset("STD256Q_LMKCDEY", Security256Q, 2, Gaussian, 28, 2048, 1019, 1024, 1<<12, 32, 1<<10, 32),
	}

	m := make(map[string]Preset, len(all))
	for _, p := range all {
		m[p.Name] = p
	}

	// Families without published three and four input sets.
	for _, base := range []string{
		"STD192", "STD192Q", "STD256", "STD256Q",
		"STD128Q_LMKCDEY", "STD192_LMKCDEY", "STD192Q_LMKCDEY", "STD256_LMKCDEY", "STD256Q_LMKCDEY",
	} {
		for _, inputs := range []int{3, 4} {
			v := derive(m[base], inputs)
			m[v.Name] = v
		}
	}
	return m
}()

// Presets returns the preset names in lexical order.
func Presets() []string {
	return slices.Sorted(maps.Keys(presets))
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, false
	}
	p.Literal = p.Literal.clone()
	return p, true
}

// MethodFromPresetName infers the bootstrapping technique a preset was tuned
// for from its name suffix.
func MethodFromPresetName(name string) Method {
	switch {
	case strings.HasSuffix(name, "_AP"):
		return AP
	case strings.HasSuffix(name, "_LMKCDEY"):
		return LMKCDEY
	default:
		return GINX
	}
}

// InputsFromPresetName infers the gate arity a preset was tuned for from its
// name, e.g. STD128_3 and STD128_3_LMKCDEY are three-input presets.
func InputsFromPresetName(name string) int {
	parts := strings.Split(name, "_")
	if len(parts) >= 2 {
		switch parts[1] {
		case "3":
			return 3
		case "4":
			return 4
		}
	}
	return 2
}
