// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func explicitLiteral() Literal {
	return Literal{
		LatticeDim:    518,
		RingDim:       2048,
		Modulus:       2048,
		LogQ:          54,
		Qks:           big.NewInt(16384),
		GadgetBase:    1 << 27,
		KeySwitchBase: 32,
		RefreshBase:   32,
		Sigma:         3.19,
		NumAutoKeys:   10,
		Distribution:  1,
		Method:        1,
	}
}

func TestResolveExplicit(t *testing.T) {
	lit := explicitLiteral()

	cfg, err := Resolve(lit, "")
	require.NoError(t, err)

	require.Equal(t, uint32(518), cfg.LatticeDim())
	require.Equal(t, uint32(2048), cfg.RingDim())
	require.Equal(t, uint64(2048), cfg.Modulus())
	require.Equal(t, uint32(54), cfg.LogQ())
	require.Equal(t, 0, cfg.Qks().Cmp(big.NewInt(16384)))
	require.Equal(t, uint64(1<<27), cfg.GadgetBase())
	require.Equal(t, uint64(32), cfg.KeySwitchBase())
	require.Equal(t, UniformTernary, cfg.Distribution())
	require.Equal(t, AP, cfg.Method())
	require.Equal(t, "", cfg.Preset())

	if diff := cmp.Diff(lit, cfg.Literal(), cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })); diff != "" {
		t.Errorf("literal mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDefaults(t *testing.T) {
	// Zero numerics are accepted; unsoundness is the engine's concern.
	cfg, err := Resolve(Literal{Method: 2}, "")
	require.NoError(t, err)

	require.Equal(t, uint32(0), cfg.LatticeDim())
	require.Equal(t, uint32(0), cfg.RingDim())
	require.Equal(t, DefaultSigma, cfg.Sigma())
	require.Equal(t, uint32(DefaultNumAutoKeys), cfg.NumAutoKeys())
	require.Equal(t, uint64(DefaultRefreshBase), cfg.RefreshBase())
	require.Equal(t, Gaussian, cfg.Distribution())
	require.Equal(t, GINX, cfg.Method())
	require.Equal(t, 0, cfg.Qks().Sign())
	require.Zero(t, cfg.LogQks())
}

func TestResolveNegativeSigma(t *testing.T) {
	lit := explicitLiteral()
	lit.Sigma = -1

	_, err := Resolve(lit, "")
	require.ErrorIs(t, err, ErrInvalidSigma)
}

func TestResolvePresetExclusivity(t *testing.T) {
	noise := explicitLiteral()
	noise.LatticeDim = 7
	noise.RingDim = 3
	noise.Sigma = 99
	noise.Distribution = 42

	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			for _, method := range []int{1, 2, 3} {
				zero := Literal{Method: method}
				filled := noise
				filled.Method = method

				a, err := Resolve(zero, name)
				require.NoError(t, err)
				b, err := Resolve(filled, name)
				require.NoError(t, err)

				require.Equal(t, a.String(), b.String())
				require.Equal(t, a.Fingerprint(), b.Fingerprint())
				require.Equal(t, Method(method), b.Method())
				require.Equal(t, name, b.Preset())

				p, ok := LookupPreset(name)
				require.True(t, ok)
				require.Equal(t, p.Distribution, b.Distribution())
				require.Equal(t, p.Literal.LatticeDim, b.LatticeDim())
				require.Equal(t, p.Literal.RingDim, b.RingDim())
				require.Equal(t, p.Literal.LogQ, b.LogQ())
			}
		})
	}
}

func TestResolvePresetIsolation(t *testing.T) {
	cfg, err := Resolve(Literal{Method: 3}, "STD128_LMKCDEY")
	require.NoError(t, err)

	cfg.Qks().SetInt64(1)
	lit := cfg.Literal()
	lit.Qks.SetInt64(1)

	again, err := Resolve(Literal{Method: 3}, "STD128_LMKCDEY")
	require.NoError(t, err)
	require.Equal(t, 0, again.Qks().Cmp(big.NewInt(1<<13)))
	require.Equal(t, 0, cfg.Qks().Cmp(big.NewInt(1<<13)))
}

func TestResolveUnknownPreset(t *testing.T) {
	_, err := Resolve(Literal{Method: 2}, "STD512")

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	require.ErrorIs(t, err, ErrUnknownPreset)
	require.Equal(t, "preset", cerr.Field)
	require.Equal(t, "STD512", cerr.Value)
}

func TestResolveEnumTotality(t *testing.T) {
	for sel := -2; sel <= 4; sel++ {
		lit := explicitLiteral()
		lit.Distribution = sel
		cfg, err := Resolve(lit, "")
		switch sel {
		case 0:
			require.NoError(t, err)
			require.Equal(t, Gaussian, cfg.Distribution())
		case 1:
			require.NoError(t, err)
			require.Equal(t, UniformTernary, cfg.Distribution())
		default:
			require.ErrorIs(t, err, ErrInvalidDistribution, "distribution %d", sel)
		}
	}

	want := map[int]Method{1: AP, 2: GINX, 3: LMKCDEY}
	for sel := -1; sel <= 6; sel++ {
		for _, preset := range []string{"", "STD128"} {
			lit := explicitLiteral()
			lit.Method = sel
			cfg, err := Resolve(lit, preset)
			if m, ok := want[sel]; ok {
				require.NoError(t, err)
				require.Equal(t, m, cfg.Method())
				continue
			}
			require.ErrorIs(t, err, ErrInvalidTechnique, "technique %d preset %q", sel, preset)
		}
	}
}

func TestValidateArity(t *testing.T) {
	for arity := -1; arity <= 6; arity++ {
		err := ValidateArity(arity)
		if arity >= 2 && arity <= 4 {
			require.NoError(t, err)
			require.Equal(t, uint64(2*arity), PlaintextModulus(arity))
			continue
		}
		require.ErrorIs(t, err, ErrInvalidArity)
	}
}

func TestPresetNames(t *testing.T) {
	names := Presets()
	require.Len(t, names, len(presets))
	require.IsIncreasing(t, names)

	testCases := []struct {
		name   string
		method Method
		inputs int
	}{
		{"STD128", GINX, 2},
		{"STD128_AP", AP, 2},
		{"STD128_3", GINX, 3},
		{"STD128_4_LMKCDEY", LMKCDEY, 4},
		{"STD128Q_LMKCDEY", LMKCDEY, 2},
		{"TOY", GINX, 2},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.method, MethodFromPresetName(tc.name), tc.name)
		require.Equal(t, tc.inputs, InputsFromPresetName(tc.name), tc.name)
	}

	for _, name := range names {
		p, _ := LookupPreset(name)
		require.Equal(t, p.Inputs, InputsFromPresetName(name), name)
	}
}

func TestLogQks(t *testing.T) {
	cfg, err := Resolve(Literal{Method: 2}, "STD128")
	require.NoError(t, err)
	require.InDelta(t, 14.0, cfg.LogQks(), 1e-9)

	lit := explicitLiteral()
	lit.Qks = new(big.Int).Lsh(big.NewInt(1), 80)
	cfg, err = Resolve(lit, "")
	require.NoError(t, err)
	require.InDelta(t, 80.0, cfg.LogQks(), 1e-9)
}

func TestFingerprint(t *testing.T) {
	fromPreset, err := Resolve(Literal{Method: 2}, "STD128")
	require.NoError(t, err)

	p, _ := LookupPreset("STD128")
	lit := p.Literal
	lit.Method = 2
	explicit, err := Resolve(lit, "")
	require.NoError(t, err)

	require.Equal(t, fromPreset.Fingerprint(), explicit.Fingerprint())
	require.Len(t, explicit.Fingerprint(), 32)

	lit.Method = 3
	other, err := Resolve(lit, "")
	require.NoError(t, err)
	require.NotEqual(t, explicit.Fingerprint(), other.Fingerprint())
}

func TestEstimateLogModulus(t *testing.T) {
	logQ, ok := EstimateLogModulus(Security128, 1024)
	require.True(t, ok)
	require.Equal(t, 27, logQ)

	dim, ok := EstimateDimension(Security128, 27)
	require.True(t, ok)
	require.Equal(t, uint32(1037), dim)

	_, ok = EstimateLogModulus(SecurityToy, 1024)
	require.False(t, ok)

	cfg, err := Resolve(Literal{Method: 2}, "STD128")
	require.NoError(t, err)
	margin, ok := cfg.SecurityMargin(Security128)
	require.True(t, ok)
	require.Equal(t, 0, margin)
}

func TestDecodeFile(t *testing.T) {
	const doc = `
n: 446
N: 1024
q: 1024
logQ: 28
Qks: "1208925819614629174706176"
B_g: 1024
B_ks: 32
sigma: 3.19
distribution: 0
technique: 3
arity: 3
trials: 50
`
	file, err := DecodeFile(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 3, file.Arity)
	require.Equal(t, 50, file.Trials)

	lit, err := file.Literal()
	require.NoError(t, err)
	require.Equal(t, uint32(446), lit.LatticeDim)
	require.Equal(t, uint32(1024), lit.RingDim)
	require.Equal(t, 81, lit.Qks.BitLen())

	cfg, err := Resolve(lit, file.Preset)
	require.NoError(t, err)
	require.Equal(t, LMKCDEY, cfg.Method())
	require.Equal(t, Gaussian, cfg.Distribution())
	require.InDelta(t, 80.0, cfg.LogQks(), 1e-9)

	_, err = DecodeFile(strings.NewReader("bogus: 1\n"))
	require.Error(t, err)

	bad := &File{Qks: "-5"}
	_, err = bad.Literal()
	require.Error(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	cfg, err := Resolve(Literal{Method: 1}, "STD128_AP")
	require.NoError(t, err)

	data, err := FileFromConfig(cfg).Encode()
	require.NoError(t, err)

	file, err := DecodeFile(strings.NewReader(string(data)))
	require.NoError(t, err)

	again, err := Resolve(Literal{Method: file.Method}, file.Preset)
	require.NoError(t, err)
	require.Equal(t, cfg.Fingerprint(), again.Fingerprint())
}

func TestPresetTable(t *testing.T) {
	require.Len(t, Presets(), 39)

	for _, name := range []string{
		"STD192_LMKCDEY", "STD192Q_LMKCDEY", "STD256_LMKCDEY", "STD256Q_LMKCDEY",
		"STD192_3", "STD192_4", "STD192Q_3", "STD192Q_4",
		"STD256_3", "STD256_4", "STD256Q_3", "STD256Q_4",
		"STD128Q_3_LMKCDEY", "STD128Q_4_LMKCDEY",
		"STD192_3_LMKCDEY", "STD192_4_LMKCDEY", "STD192Q_3_LMKCDEY", "STD192Q_4_LMKCDEY",
		"STD256_3_LMKCDEY", "STD256_4_LMKCDEY", "STD256Q_3_LMKCDEY", "STD256Q_4_LMKCDEY",
	} {
		_, ok := LookupPreset(name)
		require.True(t, ok, name)
	}

	std192, _ := LookupPreset("STD192_LMKCDEY")
	require.False(t, std192.Derived)
	require.Equal(t, Gaussian, std192.Distribution)
	require.Equal(t, uint32(716), std192.Literal.LatticeDim)
	require.Equal(t, uint64(1<<20), std192.Literal.GadgetBase)
}

func TestDerivedPresets(t *testing.T) {
	base, _ := LookupPreset("STD192Q")

	three, ok := LookupPreset("STD192Q_3")
	require.True(t, ok)
	require.True(t, three.Derived)
	require.Equal(t, 3, three.Inputs)
	require.Equal(t, base.Security, three.Security)
	require.Equal(t, uint64(1024), three.Literal.Modulus)
	require.Equal(t, uint32(2048), three.Literal.RingDim)
	require.Equal(t, uint32(922), three.Literal.LatticeDim)
	require.Equal(t, base.Literal.LogQ, three.Literal.LogQ)
	require.Zero(t, base.Literal.Qks.Cmp(three.Literal.Qks))

	four, _ := LookupPreset("STD192Q_4")
	require.Equal(t, uint64(2048), four.Literal.Modulus)

	// A family on a 1024 ring moves to 2048 for more inputs.
	q3, _ := LookupPreset("STD128Q_3_LMKCDEY")
	require.Equal(t, uint32(2048), q3.Literal.RingDim)
	require.Equal(t, LMKCDEY, MethodFromPresetName(q3.Name))
	require.Equal(t, Gaussian, q3.Distribution)

	// Derivation never weakens the family: n only grows.
	for _, name := range Presets() {
		p, _ := LookupPreset(name)
		if !p.Derived {
			continue
		}
		family, suffix, _ := strings.Cut(name, "_")
		if _, lm, found := strings.Cut(suffix, "_"); found {
			family += "_" + lm
		}
		parent, ok := LookupPreset(family)
		require.True(t, ok, name)
		require.GreaterOrEqual(t, p.Literal.LatticeDim, parent.Literal.LatticeDim, name)
		require.Equal(t, InputsFromPresetName(name), p.Inputs, name)
	}
}

func TestSecurityLevelOf(t *testing.T) {
	cfg, err := Resolve(Literal{Method: 3}, "STD128_LMKCDEY")
	require.NoError(t, err)
	level, ok := cfg.SecurityLevel()
	require.True(t, ok)
	require.Equal(t, Security128, level)

	cfg, err = Resolve(explicitLiteral(), "")
	require.NoError(t, err)
	_, ok = cfg.SecurityLevel()
	require.False(t, ok)
}
