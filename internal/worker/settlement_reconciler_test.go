package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSettlementRetrier struct {
	mock.Mock
}

func (m *MockSettlementRetrier) ReconcileSettlements(ctx context.Context, grace time.Duration) (int, error) {
	args := m.Called(ctx, grace)
	return args.Int(0), args.Error(1)
}

func TestNewSettlementReconciler(t *testing.T) {
	r := NewSettlementReconciler(new(MockSettlementRetrier), time.Minute, 2*time.Minute)

	assert.Equal(t, time.Minute, r.interval)
	assert.Equal(t, 2*time.Minute, r.grace)
	assert.NotNil(t, r.stopCh)
	assert.NotNil(t, r.doneCh)
}

func TestNewSettlementReconciler_NonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		r := NewSettlementReconciler(new(MockSettlementRetrier), interval, 0)
		assert.Equal(t, defaultReconcileInterval, r.interval)
	}
}

func TestSettlementReconciler_ZeroIntervalStartStop(t *testing.T) {
	service := new(MockSettlementRetrier)
	r := NewSettlementReconciler(service, 0, 0)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()
	r.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

func TestSettlementReconciler_Reconcile(t *testing.T) {
	t.Run("未精算予約を精算する", func(t *testing.T) {
		service := new(MockSettlementRetrier)
		service.On("ReconcileSettlements", mock.Anything, 2*time.Minute).Return(3, nil)

		NewSettlementReconciler(service, time.Minute, 2*time.Minute).reconcile(context.Background())

		service.AssertExpectations(t)
	})

	t.Run("未精算予約なし", func(t *testing.T) {
		service := new(MockSettlementRetrier)
		service.On("ReconcileSettlements", mock.Anything, 2*time.Minute).Return(0, nil)

		NewSettlementReconciler(service, time.Minute, 2*time.Minute).reconcile(context.Background())

		service.AssertExpectations(t)
	})

	t.Run("エラーはログに残して握りつぶす", func(t *testing.T) {
		service := new(MockSettlementRetrier)
		service.On("ReconcileSettlements", mock.Anything, 2*time.Minute).Return(1, assert.AnError)

		NewSettlementReconciler(service, time.Minute, 2*time.Minute).reconcile(context.Background())

		service.AssertExpectations(t)
	})
}

func TestSettlementReconciler_StartStop(t *testing.T) {
	t.Run("停止するまで毎回実行する", func(t *testing.T) {
		var calls int32
		service := new(MockSettlementRetrier)
		service.On("ReconcileSettlements", mock.Anything, time.Second).
			Run(func(mock.Arguments) { atomic.AddInt32(&calls, 1) }).
			Return(0, nil)

		r := NewSettlementReconciler(service, 10*time.Millisecond, time.Second)
		go r.Start(context.Background())

		assert.Eventually(t, func() bool {
			return atomic.LoadInt32(&calls) >= 2
		}, time.Second, 5*time.Millisecond)

		r.Stop()
		r.Stop()
	})

	t.Run("コンテキストキャンセルで終了する", func(t *testing.T) {
		service := new(MockSettlementRetrier)
		service.On("ReconcileSettlements", mock.Anything, mock.Anything).Return(0, nil).Maybe()

		r := NewSettlementReconciler(service, time.Hour, time.Minute)
		ctx, cancel := context.WithCancel(context.Background())
		go r.Start(ctx)
		cancel()

		select {
		case <-r.doneCh:
		case <-time.After(time.Second):
			t.Fatal("reconciler did not stop after context cancellation")
		}
	})
}
