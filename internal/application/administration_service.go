package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
	redisinfra "github.com/sanosuguru/go-aeroclub-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/logger"
)

// PolicySource は現在のライセンスポリシーのスナップショットを返す
type PolicySource interface {
	Policy(ctx context.Context) (administration.LicensePolicy, error)
}

type AdministrationService struct {
	repo     administration.Repository
	cache    redisinfra.PolicyCacheInterface
	cacheTTL time.Duration
}

// NewAdministrationService は管理設定サービスを作成する
// cache が nil の場合、ポリシーは毎回リポジトリから読む
func NewAdministrationService(repo administration.Repository, cache redisinfra.PolicyCacheInterface, cacheTTL time.Duration) *AdministrationService {
	return &AdministrationService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// GetSettings は正となる（最初の）設定を返す
func (s *AdministrationService) GetSettings(ctx context.Context) (*administration.Settings, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, administration.ErrSettingsNotFound
	}
	return all[0], nil
}

// UpdateSettings は許可ライセンス一覧を置き換える（設定がなければ作成する）
func (s *AdministrationService) UpdateSettings(ctx context.Context, pilotLicenses []string) (*administration.Settings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, administration.ErrSettingsNotFound) {
			return nil, err
		}
		settings = &administration.Settings{}
	}

	settings.PilotLicenses = dedupe(pilotLicenses)
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("設定の保存に失敗: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn("ポリシーキャッシュ無効化エラー", zap.Error(err))
		}
	}
	return settings, nil
}

func (s *AdministrationService) Policy(ctx context.Context) (administration.LicensePolicy, error) {
	if s.cache != nil {
		licenses, err := s.cache.GetLicenses(ctx)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.Strings("licenses", licenses))
			return administration.NewLicensePolicy(licenses), nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return administration.LicensePolicy{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetLicenses(ctx, settings.PilotLicenses, s.cacheTTL); err != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(err))
		}
	}
	return settings.Policy(), nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

var _ PolicySource = (*AdministrationService)(nil)
