// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package binfhe

import (
	"fmt"
	"io"
	"log"

	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/params"
)

// automorphismWindow is the number of consecutive automorphism keys the
// blind rotation accumulator uses.
const automorphismWindow = 10

// Engine creates lattice backed contexts.
type Engine struct {
	logger *log.Logger
}

// NewEngine returns an engine that reports parameter notes to logger. A nil
// logger discards them.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{logger: logger}
}

var _ engine.Engine = (*Engine)(nil)

// NewContext implements engine.Engine.
func (e *Engine) NewContext(cfg params.SchemeConfig) (engine.Context, error) {
	p, err := NewParameters(cfg)
	if err != nil {
		return nil, err
	}

	e.logger.Printf("binfhe: LWE n=%d ring=%d q=%d, blind rotation N=%d Q=%d",
		p.LatticeDim(), p.NLWE(), p.QLWE(), p.NBR(), p.QBR())
	if cfg.Method() != params.LMKCDEY {
		e.logger.Printf("binfhe: %v bootstrapping runs on the automorphism accumulator with base 2^%d",
			cfg.Method(), *p.brkParams.BaseTwoDecomposition)
	}
	if cfg.NumAutoKeys() != automorphismWindow {
		e.logger.Printf("binfhe: numAutoKeys=%d requested, automorphism window is %d",
			cfg.NumAutoKeys(), automorphismWindow)
	}

	return &Context{
		params: p,
		kgen:   NewKeyGenerator(p),
	}, nil
}

// Context implements engine.Context and engine.NoiseMeter.
type Context struct {
	params Parameters
	kgen   *KeyGenerator
	eval   *Evaluator

	// codec of the last secret key seen
	sk  *SecretKey
	enc *Encryptor
	dec *Decryptor
}

var (
	_ engine.Context    = (*Context)(nil)
	_ engine.NoiseMeter = (*Context)(nil)
)

// Parameters returns the engine parameters of the context.
func (c *Context) Parameters() Parameters {
	return c.params
}

func recoverInto(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: %v", op, r)
	}
}

// KeyGen implements engine.Context.
func (c *Context) KeyGen() (sk engine.SecretKey, err error) {
	defer recoverInto("keygen", &err)
	return c.kgen.GenSecretKey(), nil
}

// BTKeyGen implements engine.Context. The generated key is retained by the
// context for gate evaluation.
func (c *Context) BTKeyGen(sk engine.SecretKey) (bk engine.BootstrapKey, err error) {
	key, err := secretKey(sk)
	if err != nil {
		return nil, err
	}

	defer recoverInto("bootstrap keygen", &err)
	bsk := c.kgen.GenBootstrapKey(key)
	c.eval = NewEvaluator(c.params, bsk)
	return bsk, nil
}

// Encrypt implements engine.Context.
func (c *Context) Encrypt(sk engine.SecretKey, bit int, mode engine.Mode, p uint64) (ct engine.Ciphertext, err error) {
	key, err := secretKey(sk)
	if err != nil {
		return nil, err
	}
	enc, _ := c.codec(key)

	defer recoverInto("encrypt", &err)
	return enc.Encrypt(bit, mode, p)
}

// EvalBinGate implements engine.Context.
func (c *Context) EvalBinGate(gate engine.Gate, ct1, ct2 engine.Ciphertext) (engine.Ciphertext, error) {
	if gate.Arity() != 2 {
		return nil, fmt.Errorf("eval: %v is not a two-input gate", gate)
	}
	return c.EvalBinGateVector(gate, []engine.Ciphertext{ct1, ct2})
}

// EvalBinGateVector implements engine.Context.
func (c *Context) EvalBinGateVector(gate engine.Gate, cts []engine.Ciphertext) (out engine.Ciphertext, err error) {
	if c.eval == nil {
		return nil, fmt.Errorf("eval: bootstrapping key not generated")
	}

	ops := make([]*Ciphertext, len(cts))
	for i, ct := range cts {
		if ops[i], err = ciphertext(ct); err != nil {
			return nil, fmt.Errorf("eval: operand %d: %w", i, err)
		}
	}

	defer recoverInto("eval", &err)
	return c.eval.EvalGate(gate, ops...)
}

// Decrypt implements engine.Context.
func (c *Context) Decrypt(sk engine.SecretKey, ct engine.Ciphertext, p uint64) (int, error) {
	key, err := secretKey(sk)
	if err != nil {
		return 0, err
	}
	in, err := ciphertext(ct)
	if err != nil {
		return 0, err
	}
	_, dec := c.codec(key)
	return dec.Decrypt(in, p)
}

// Noise implements engine.NoiseMeter.
func (c *Context) Noise(sk engine.SecretKey, ct engine.Ciphertext, p uint64) (float64, error) {
	key, err := secretKey(sk)
	if err != nil {
		return 0, err
	}
	in, err := ciphertext(ct)
	if err != nil {
		return 0, err
	}
	_, dec := c.codec(key)
	return dec.Noise(in, p)
}

// Modulus implements engine.NoiseMeter.
func (c *Context) Modulus(ct engine.Ciphertext) uint64 {
	in, err := ciphertext(ct)
	if err != nil {
		return 0
	}
	if in.Mode == engine.Fresh {
		return c.params.QBR()
	}
	return c.params.QLWE()
}

// Serialize implements engine.Context.
func (c *Context) Serialize(obj any) ([]byte, error) {
	switch v := obj.(type) {
	case *Ciphertext:
		return v.MarshalBinary()
	case *SecretKey:
		return v.MarshalBinary()
	case *BootstrapKey:
		return v.MarshalBinary()
	case blindrot.MemBlindRotationEvaluationKeySet:
		return marshalRefreshKey(v)
	case *rlwe.EvaluationKey:
		return v.MarshalBinary()
	default:
		return nil, fmt.Errorf("serialize: unsupported object %T", obj)
	}
}

func (c *Context) codec(sk *SecretKey) (*Encryptor, *Decryptor) {
	if c.sk != sk {
		c.sk = sk
		c.enc = NewEncryptor(c.params, sk)
		c.dec = NewDecryptor(c.params, sk)
	}
	return c.enc, c.dec
}

func secretKey(sk engine.SecretKey) (*SecretKey, error) {
	key, ok := sk.(*SecretKey)
	if !ok || key == nil {
		return nil, fmt.Errorf("secret key of type %T does not belong to this engine", sk)
	}
	return key, nil
}

func ciphertext(ct engine.Ciphertext) (*Ciphertext, error) {
	in, ok := ct.(*Ciphertext)
	if !ok || in == nil {
		return nil, fmt.Errorf("ciphertext of type %T does not belong to this engine", ct)
	}
	return in, nil
}
