package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュなし")

const policyKey = "administration:pilot_licenses"

// PolicyCacheInterface は許可ライセンス一覧をキャッシュする
type PolicyCacheInterface interface {
	GetLicenses(ctx context.Context) ([]string, error)
	SetLicenses(ctx context.Context, licenses []string, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type PolicyCache struct {
	client *redis.Client
}

func NewPolicyCache(client *redis.Client) *PolicyCache {
	return &PolicyCache{client: client}
}

// GetLicenses はキャッシュがなければ ErrCacheMiss を返す
func (c *PolicyCache) GetLicenses(ctx context.Context) ([]string, error) {
	raw, err := c.client.Get(ctx, policyKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var licenses []string
	if err := json.Unmarshal(raw, &licenses); err != nil {
		return nil, fmt.Errorf("キャッシュのデコードに失敗: %w", err)
	}
	return licenses, nil
}

func (c *PolicyCache) SetLicenses(ctx context.Context, licenses []string, ttl time.Duration) error {
	if licenses == nil {
		licenses = []string{}
	}
	raw, err := json.Marshal(licenses)
	if err != nil {
		return fmt.Errorf("キャッシュのエンコードに失敗: %w", err)
	}
	if err := c.client.Set(ctx, policyKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

func (c *PolicyCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, policyKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

var _ PolicyCacheInterface = (*PolicyCache)(nil)
