package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/config"
)

// Config は NewClient の接続設定
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// FromConfig はアプリケーションのRedis設定を変換する
func FromConfig(cfg *config.RedisConfig) *Config {
	return &Config{Host: cfg.Host, Port: cfg.Port, Password: cfg.Password, DB: cfg.DB}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// NewClient はRedisに接続して疎通を確認する
func NewClient(cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("Redis接続に失敗しました: %w", err)
	}
	return nil
}
