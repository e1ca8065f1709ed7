// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/params"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeCiphertext struct {
	bit int
}

type fakeBootstrapKey struct{}

func (fakeBootstrapKey) RefreshKey() any { return "refresh-key" }
func (fakeBootstrapKey) SwitchKey() any  { return "switch-key" }

// fakeContext is a scripted engine. Gates compute their clear value unless
// the gate is listed in wrong; decryptions listed in flip (1-based call
// index) return the complement; failAt makes the n-th call of a method fail.
type fakeContext struct {
	clock     *fakeClock
	keyGenDur time.Duration
	evalDurs  []time.Duration

	calls  []string
	counts map[string]int
	failAt map[string]int
	flip   map[int]bool
	wrong  map[engine.Gate]bool
}

func newFakeContext(clock *fakeClock) *fakeContext {
	return &fakeContext{
		clock:     clock,
		keyGenDur: 40 * time.Millisecond,
		evalDurs:  []time.Duration{time.Millisecond},
		counts:    make(map[string]int),
		failAt:    make(map[string]int),
		flip:      make(map[int]bool),
		wrong:     make(map[engine.Gate]bool),
	}
}

func (c *fakeContext) record(name string) error {
	c.calls = append(c.calls, name)
	c.counts[name]++
	if n, ok := c.failAt[name]; ok && n == c.counts[name] {
		return errBoom
	}
	return nil
}

func (c *fakeContext) count(name string) int { return c.counts[name] }

func (c *fakeContext) KeyGen() (engine.SecretKey, error) {
	if err := c.record("keygen"); err != nil {
		return nil, err
	}
	return "sk", nil
}

func (c *fakeContext) BTKeyGen(sk engine.SecretKey) (engine.BootstrapKey, error) {
	c.clock.advance(c.keyGenDur)
	if err := c.record("btkeygen"); err != nil {
		return nil, err
	}
	return fakeBootstrapKey{}, nil
}

func (c *fakeContext) Encrypt(sk engine.SecretKey, bit int, mode engine.Mode, p uint64) (engine.Ciphertext, error) {
	if err := c.record("encrypt"); err != nil {
		return nil, err
	}
	if mode != engine.SmallDim {
		return nil, fmt.Errorf("unexpected mode %v", mode)
	}
	return &fakeCiphertext{bit: bit}, nil
}

func (c *fakeContext) eval(name string, gate engine.Gate, cts []engine.Ciphertext) (engine.Ciphertext, error) {
	c.clock.advance(c.evalDurs[c.counts["eval"]%len(c.evalDurs)])
	c.counts["eval"]++
	if err := c.record(name + ":" + gate.String()); err != nil {
		return nil, err
	}
	if n, ok := c.failAt["eval"]; ok && n == c.counts["eval"] {
		return nil, errBoom
	}
	if len(cts) != gate.Arity() {
		return nil, fmt.Errorf("%v takes %d inputs, got %d", gate, gate.Arity(), len(cts))
	}

	bits := make([]int, len(cts))
	for i, ct := range cts {
		bits[i] = ct.(*fakeCiphertext).bit
	}
	out := gate.Eval(bits...)
	if c.wrong[gate] {
		out ^= 1
	}
	return &fakeCiphertext{bit: out}, nil
}

func (c *fakeContext) EvalBinGate(gate engine.Gate, ct1, ct2 engine.Ciphertext) (engine.Ciphertext, error) {
	return c.eval("binary", gate, []engine.Ciphertext{ct1, ct2})
}

func (c *fakeContext) EvalBinGateVector(gate engine.Gate, cts []engine.Ciphertext) (engine.Ciphertext, error) {
	return c.eval("vector", gate, cts)
}

func (c *fakeContext) Decrypt(sk engine.SecretKey, ct engine.Ciphertext, p uint64) (int, error) {
	if err := c.record("decrypt"); err != nil {
		return 0, err
	}
	bit := ct.(*fakeCiphertext).bit
	if c.flip[c.count("decrypt")] {
		bit ^= 1
	}
	return bit, nil
}

func (c *fakeContext) Serialize(obj any) ([]byte, error) {
	if err := c.record("serialize"); err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%v", obj)), nil
}

// fakeMeterContext also reports noise, cycling through noise.
type fakeMeterContext struct {
	*fakeContext
	noise []float64
	n     int
}

func (c *fakeMeterContext) Noise(sk engine.SecretKey, ct engine.Ciphertext, p uint64) (float64, error) {
	v := c.noise[c.n%len(c.noise)]
	c.n++
	return v, nil
}

func (c *fakeMeterContext) Modulus(ct engine.Ciphertext) uint64 { return 1024 }

type fakeEngine struct {
	ctx    engine.Context
	err    error
	calls  int
	config []params.SchemeConfig
}

func (e *fakeEngine) NewContext(cfg params.SchemeConfig) (engine.Context, error) {
	e.calls++
	e.config = append(e.config, cfg)
	if e.err != nil {
		return nil, e.err
	}
	return e.ctx, nil
}

func testLiteral() params.Literal {
	return params.Literal{
		LatticeDim:    32,
		RingDim:       1024,
		Modulus:       1024,
		LogQ:          27,
		GadgetBase:    1 << 7,
		KeySwitchBase: 1 << 7,
		Distribution:  int(params.UniformTernary),
		Method:        int(params.GINX),
	}
}

func testKeys(ctx engine.Context, clock Clock) *KeyBundle {
	return &KeyBundle{
		Context:      ctx,
		SecretKey:    "sk",
		BootstrapKey: fakeBootstrapKey{},
		clock:        clock,
	}
}

type testLogger struct {
	bytes.Buffer
}

func (l *testLogger) logger() *log.Logger {
	return log.New(&l.Buffer, "", 0)
}
