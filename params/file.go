// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a run configuration. Qks is a decimal string
// because it may exceed 64 bits.
type File struct {
	Preset        string  `yaml:"preset,omitempty"`
	LatticeDim    uint32  `yaml:"n,omitempty"`
	RingDim       uint32  `yaml:"N,omitempty"`
	Modulus       uint64  `yaml:"q,omitempty"`
	LogQ          uint32  `yaml:"logQ,omitempty"`
	Qks           string  `yaml:"Qks,omitempty"`
	GadgetBase    uint64  `yaml:"B_g,omitempty"`
	KeySwitchBase uint64  `yaml:"B_ks,omitempty"`
	RefreshBase   uint64  `yaml:"B_rk,omitempty"`
	Sigma         float64 `yaml:"sigma,omitempty"`
	NumAutoKeys   uint32  `yaml:"numAutoKeys,omitempty"`
	Distribution  int     `yaml:"distribution"`
	Method        int     `yaml:"technique"`
	Arity         int     `yaml:"arity,omitempty"`
	Trials        int     `yaml:"trials,omitempty"`
}

// LoadFile reads a YAML run configuration from path.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return DecodeFile(f)
}

// DecodeFile reads a YAML run configuration from r. Unknown keys are rejected.
func DecodeFile(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &file, nil
}

// Encode writes the configuration as YAML.
func (f *File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Literal converts the file knobs into a Literal.
func (f *File) Literal() (Literal, error) {
	lit := Literal{
		LatticeDim:    f.LatticeDim,
		RingDim:       f.RingDim,
		Modulus:       f.Modulus,
		LogQ:          f.LogQ,
		GadgetBase:    f.GadgetBase,
		KeySwitchBase: f.KeySwitchBase,
		RefreshBase:   f.RefreshBase,
		Sigma:         f.Sigma,
		NumAutoKeys:   f.NumAutoKeys,
		Distribution:  f.Distribution,
		Method:        f.Method,
	}
	if f.Qks != "" {
		qks, ok := new(big.Int).SetString(f.Qks, 10)
		if !ok || qks.Sign() < 0 {
			return Literal{}, fmt.Errorf("config: invalid Qks %q", f.Qks)
		}
		lit.Qks = qks
	}
	return lit, nil
}

// FileFromConfig captures a resolved configuration in file form.
func FileFromConfig(c SchemeConfig) *File {
	return &File{
		Preset:        c.preset,
		LatticeDim:    c.lit.LatticeDim,
		RingDim:       c.lit.RingDim,
		Modulus:       c.lit.Modulus,
		LogQ:          c.lit.LogQ,
		Qks:           c.Qks().String(),
		GadgetBase:    c.lit.GadgetBase,
		KeySwitchBase: c.lit.KeySwitchBase,
		RefreshBase:   c.lit.RefreshBase,
		Sigma:         c.lit.Sigma,
		NumAutoKeys:   c.lit.NumAutoKeys,
		Distribution:  int(c.dist),
		Method:        int(c.method),
	}
}
