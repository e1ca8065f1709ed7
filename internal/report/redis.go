// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luxfi/binfhe-estimator/harness"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long a report is kept; 0 keeps it forever.
	TTL time.Duration
}

// RedisSink stores reports under their configuration fingerprint and keeps a
// list of published fingerprints, newest first.
type RedisSink struct {
	client    *redis.Client
	ttl       time.Duration
	listKey   string
	keyPrefix string
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisSink{
		client:    client,
		ttl:       cfg.TTL,
		listKey:   "binfhe:reports",
		keyPrefix: "binfhe:report:",
	}, nil
}

func (s *RedisSink) key(fingerprint string) string {
	return s.keyPrefix + fingerprint
}

func (s *RedisSink) Publish(ctx context.Context, r *harness.RunReport) error {
	if r == nil {
		return ErrNilReport
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(r.Fingerprint), data, s.ttl)
	pipe.LPush(ctx, s.listKey, r.Fingerprint)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
