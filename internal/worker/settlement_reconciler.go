package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/logger"
)

// SettlementRetrier は未払いの予約の引き落としを再試行する
type SettlementRetrier interface {
	ReconcileSettlements(ctx context.Context, grace time.Duration) (int, error)
}

// SettlementReconciler は支払い未紐付けの確定予約を定期的に精算する
type SettlementReconciler struct {
	service  SettlementRetrier
	interval time.Duration
	grace    time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

const defaultReconcileInterval = time.Minute

// NewSettlementReconciler はリコンサイラーを作成する（interval が0以下なら1分）
func NewSettlementReconciler(s SettlementRetrier, interval, grace time.Duration) *SettlementReconciler {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	return &SettlementReconciler{
		service:  s,
		interval: interval,
		grace:    grace,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start は ctx が終わるか Stop が呼ばれるまでブロックする
func (r *SettlementReconciler) Start(ctx context.Context) {
	logger.Info("精算リコンサイラー開始",
		zap.Duration("interval", r.interval),
		zap.Duration("grace", r.grace),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("精算リコンサイラー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("精算リコンサイラー停止（停止要求）")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// Stop は Start を終了させて完了を待つ（複数回呼んでもよい）
func (r *SettlementReconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *SettlementReconciler) reconcile(ctx context.Context) {
	count, err := r.service.ReconcileSettlements(ctx, r.grace)
	if err != nil {
		logger.Error("精算の再試行に失敗", zap.Error(err), zap.Int("settled", count))
		return
	}
	if count > 0 {
		logger.Info("未精算予約を精算", zap.Int("count", count))
	} else {
		logger.Debug("未精算予約なし")
	}
}
