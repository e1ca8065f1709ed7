// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Command binfhe-estimate generates boolean FHE keys for a parameter set,
// evaluates threshold gates under bootstrapping, and reports key sizes,
// timings and decryption failures.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"

	binfhe "github.com/luxfi/binfhe-estimator"
	"github.com/luxfi/binfhe-estimator/harness"
	"github.com/luxfi/binfhe-estimator/internal/profiling"
	"github.com/luxfi/binfhe-estimator/internal/report"
	"github.com/luxfi/binfhe-estimator/internal/storage"
	"github.com/luxfi/binfhe-estimator/params"
)

// sweepAll runs every preset.
const sweepAll = "ALL"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("binfhe-estimate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		latticeDim  = fs.Uint("n", 0, "lattice dimension n")
		ringDim     = fs.Uint("N", 0, "ring dimension N")
		modulus     = fs.Uint64("q", 0, "ciphertext modulus q")
		logQ        = fs.Uint("Q", 0, "bit size of the ring modulus Q")
		qks         = fs.String("k", "0", "key switching modulus Qks (decimal)")
		gadgetBase  = fs.Uint64("g", 0, "digit base B_g")
		refreshBase = fs.Uint64("r", params.DefaultRefreshBase, "refreshing key base B_rk")
		ksBase      = fs.Uint64("b", 0, "key switching base B_ks")
		sigma       = fs.Float64("s", params.DefaultSigma, "error standard deviation")
		technique   = fs.Int("t", int(params.LMKCDEY), "bootstrapping technique: 1 AP, 2 GINX, 3 LMKCDEY")
		dist        = fs.Int("d", 0, "secret key distribution: 0 Gaussian, 1 uniform ternary")
		autoKeys    = fs.Uint("a", params.DefaultNumAutoKeys, "number of automorphism keys")
		arity       = fs.Int("I", 2, "gate inputs (2-4)")
		trials      = fs.Int("i", harness.DefaultTrials, "number of trials")
		failure     = fs.Float64("f", harness.DefaultTargetFailureLog2, "log2 failure probability the target noise is reported for; 0 disables it")
		preset      = fs.String("p", "", "named parameter set, or ALL to sweep every preset")
		modeName    = fs.String("mode", "noise", "noise or verify")
		configPath  = fs.String("config", "", "YAML parameter file; flags given explicitly override it")
		storeDir    = fs.String("store", "", "directory receiving serialized keys and ciphertexts")
		redisAddr   = fs.String("redis", "", "Redis address receiving reports")
		redisDB     = fs.Int("redis-db", 0, "Redis database number")
		profileName = fs.String("profile", "", "record a cpu, mem, block, mutex or trace profile")
		profileDir  = fs.String("profile-dir", ".", "profile output directory")
		jsonOut     = fs.Bool("json", false, "print reports as JSON")
		dump        = fs.Bool("dump", false, "print the resolved configuration as YAML and exit")
		progress    = fs.Int("progress", 0, "log progress every that many trials")
		verbose     = fs.Bool("v", false, "log progress to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(stderr, "binfhe-estimate: ", log.LstdFlags)
	}

	// Without a config file every flag applies; with one only explicit flags do.
	file := new(params.File)
	apply := fs.VisitAll
	if *configPath != "" {
		loaded, err := params.LoadFile(*configPath)
		if err != nil {
			return err
		}
		file = loaded
		apply = fs.Visit
	}
	apply(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			file.LatticeDim = uint32(*latticeDim)
		case "N":
			file.RingDim = uint32(*ringDim)
		case "q":
			file.Modulus = *modulus
		case "Q":
			file.LogQ = uint32(*logQ)
		case "k":
			file.Qks = *qks
		case "g":
			file.GadgetBase = *gadgetBase
		case "r":
			file.RefreshBase = *refreshBase
		case "b":
			file.KeySwitchBase = *ksBase
		case "s":
			file.Sigma = *sigma
		case "t":
			file.Method = *technique
		case "d":
			file.Distribution = *dist
		case "a":
			file.NumAutoKeys = uint32(*autoKeys)
		case "I":
			file.Arity = *arity
		case "i":
			file.Trials = *trials
		case "p":
			file.Preset = *preset
		}
	})

	// Keys missing from a config file take the flag defaults.
	if file.Arity == 0 {
		file.Arity = *arity
	}
	if file.Method == 0 {
		file.Method = *technique
	}
	if file.Trials == 0 {
		file.Trials = *trials
	}

	lit, err := file.Literal()
	if err != nil {
		return err
	}
	if lit.Qks == nil {
		lit.Qks = new(big.Int)
	}

	mode, err := harness.ParseMode(*modeName)
	if err != nil {
		return err
	}
	profMode, err := profiling.ParseMode(*profileName)
	if err != nil {
		return err
	}

	if *dump {
		cfg, err := params.Resolve(lit, file.Preset)
		if err != nil {
			return err
		}
		data, err := params.FileFromConfig(cfg).Encode()
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	var sinks report.Multi
	if *jsonOut {
		sinks = append(sinks, report.NewJSONSink(stdout))
	} else {
		sinks = append(sinks, report.NewTextSink(stdout))
	}
	if *redisAddr != "" {
		rs, err := report.NewRedisSink(report.RedisConfig{Addr: *redisAddr, DB: *redisDB})
		if err != nil {
			return fmt.Errorf("create report sink: %w", err)
		}
		sinks = append(sinks, rs)
	}
	defer sinks.Close()

	opts := harness.Options{Logger: logger, ProgressEvery: *progress}
	if *storeDir != "" {
		store, err := storage.NewFileStorage(*storeDir)
		if err != nil {
			return fmt.Errorf("create storage: %w", err)
		}
		defer store.Close()
		opts.Store = store
	}

	prof, err := profiling.Start(profMode, *profileDir)
	if err != nil {
		return err
	}
	defer func() {
		prof.Stop()
		logger.Printf("memory: %v", profiling.ReadMemStats())
	}()

	eng := binfhe.NewEngine(logger)
	ctx := context.Background()

	if file.Preset == sweepAll {
		base := harness.Request{Trials: file.Trials, TargetFailureLog2: *failure}
		return sweep(ctx, eng, base, opts, sinks, stderr)
	}

	req := harness.Request{
		Literal: lit,
		Preset:  file.Preset,
		Arity:   file.Arity,
		Trials:  file.Trials,
		Mode:    mode,

		TargetFailureLog2: *failure,
	}
	r, err := harness.Estimate(eng, req, opts)
	if err != nil {
		return err
	}
	return sinks.Publish(ctx, r)
}

func sweep(ctx context.Context, eng *binfhe.Engine, base harness.Request, opts harness.Options, sinks report.Sink, stderr io.Writer) error {
	var failed []error
	results := harness.Sweep(eng, params.Presets(), base, opts)
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", res.Preset, res.Err)
			failed = append(failed, fmt.Errorf("%s: %w", res.Preset, res.Err))
			continue
		}
		if err := sinks.Publish(ctx, res.Report); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d presets failed: %w", len(failed), len(results), errors.Join(failed...))
	}
	return nil
}
