package main

import (
	"log/slog"

	goSession "github.com/MrEthical07/goSession"
	"github.com/redis/go-redis/v9"
)

// buildEngine wires an engine from cfg. The returned cleanup closes the
// engine and any Redis client it opened.
func buildEngine(cfg *fileConfig, logger *slog.Logger) (*goSession.Engine, func(), error) {
	engineCfg, err := cfg.engineConfig()
	if err != nil {
		return nil, nil, err
	}

	builder := goSession.New().
		WithConfig(engineCfg).
		WithLogger(logger).
		WithAuditSink(goSession.NewSlogSink(logger))

	var client redis.UniversalClient
	if engineCfg.ValidationMode == goSession.ModeStrict {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Redis.Addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		builder = builder.WithRedis(client)
	}

	engine, err := builder.Build()
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		engine.Close()
		if client != nil {
			_ = client.Close()
		}
	}
	return engine, cleanup, nil
}
