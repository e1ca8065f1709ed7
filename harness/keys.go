// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package harness

import (
	"time"

	"github.com/luxfi/binfhe-estimator/engine"
	"github.com/luxfi/binfhe-estimator/params"
)

// KeyBundle holds the key material of one run. It is created by GenerateKeys
// and never mutated afterwards.
type KeyBundle struct {
	Config       params.SchemeConfig
	Context      engine.Context
	SecretKey    engine.SecretKey
	BootstrapKey engine.BootstrapKey
	// KeyGenTime covers bootstrapping key generation only.
	KeyGenTime time.Duration

	clock Clock
}

// GenerateKeys builds an engine context for cfg, then the secret key, then the
// bootstrapping keys. Failures are not retried.
func GenerateKeys(eng engine.Engine, cfg params.SchemeConfig, clock Clock) (*KeyBundle, error) {
	clock = clockOrSystem(clock)

	ctx, err := eng.NewContext(cfg)
	if err != nil {
		return nil, stageError(StageConfiguration, -1, err)
	}

	sk, err := ctx.KeyGen()
	if err != nil {
		return nil, stageError(StageKeyGeneration, -1, err)
	}

	start := clock.Now()
	bk, err := ctx.BTKeyGen(sk)
	elapsed := clock.Now().Sub(start)
	if err != nil {
		return nil, stageError(StageKeyGeneration, -1, err)
	}

	return &KeyBundle{
		Config:       cfg,
		Context:      ctx,
		SecretKey:    sk,
		BootstrapKey: bk,
		KeyGenTime:   elapsed,
		clock:        clock,
	}, nil
}
