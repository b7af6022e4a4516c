package config

// This file defines a Redis client constructor for the application.  Redis
// holds pending OAuth state values so that any instance behind a load
// balancer can complete a callback started on another one.  If connection
// fails during startup, the function returns nil and callers fall back to
// an in-process store.

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig lists the connection parameters for Redis.
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (host/port win when both are set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	TLS      string `env:"REDIS_TLS"`
}

// Address resolves the dial address from Host/Port or Addr.
func (c RedisConfig) Address() string {
	if c.Host != "" && c.Port != "" {
		return c.Host + ":" + c.Port
	}
	if c.Addr == "" {
		return "localhost:6379"
	}
	return c.Addr
}

// NewRedisClient instantiates a Redis client from cfg.  The returned client
// is nil when Redis is disabled or a ping does not succeed within two
// seconds.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	var tlsConf *tls.Config
	if strings.EqualFold(cfg.TLS, "true") || cfg.TLS == "1" {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Address(),
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	// Ping the server with a short timeout.  Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
