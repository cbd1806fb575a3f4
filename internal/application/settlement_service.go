package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/money"
)

const (
	settlementWithdrawal = "withdrawal"
	settlementRefund     = "refund"
	settlementDeposit    = "deposit"
)

// Settlement は予約サービスが依存する精算処理
type Settlement interface {
	CreateWithdrawal(ctx context.Context, input WithdrawalInput) (*payment.Payment, error)
	Refund(ctx context.Context, input RefundInput) (*payment.Payment, error)
}

// SettlementService はユーザー残高と支払い台帳の間でお金を動かす
// 残高の変更と台帳の行は同じトランザクションでコミットする
type SettlementService struct {
	txManager   transaction.Manager
	paymentRepo payment.Repository
	userRepo    user.Repository
	notifier    notification.Dispatcher
}

func NewSettlementService(txm transaction.Manager, pr payment.Repository, ur user.Repository, notifier notification.Dispatcher) *SettlementService {
	return &SettlementService{txManager: txm, paymentRepo: pr, userRepo: ur, notifier: notifier}
}

type WithdrawalInput struct {
	UserID string
	Amount float64
	Method payment.Method
	// Reference は引き落としの冪等性キー（予約の引き落としでは予約ID）
	Reference string
}

type RefundInput struct {
	UserID string
	Amount float64
	// PaymentID は返金する引き落としを直接指定する
	PaymentID string
	// Reference は PaymentID が空のとき、その参照で記録された引き落としを指定する
	// どちらもなければ参照なしで Amount に一致する最も古い完了済み引き落としを返金する
	Reference string
}

type DepositInput struct {
	UserID string
	Amount float64
	Method payment.Method
}

// CreateWithdrawal は残高から input.Amount を引き落として完了済みの引き落としを記録する
// 同じ参照なら既存の支払いを返す
func (s *SettlementService) CreateWithdrawal(ctx context.Context, input WithdrawalInput) (p *payment.Payment, err error) {
	defer func() {
		var amount float64
		if p != nil {
			amount = p.Amount
		}
		metrics.Get().ObserveSettlement(settlementWithdrawal, err, amount)
	}()

	cents := money.ToCents(input.Amount)
	if cents < 0 {
		return nil, payment.ErrInvalidAmount
	}

	if input.Reference != "" {
		existing, err := s.paymentRepo.GetByReference(ctx, input.Reference)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, fmt.Errorf("支払い参照の確認に失敗: %w", err)
		}
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID, false); err != nil {
		return nil, err
	}

	method := input.Method
	if method == "" {
		method = payment.MethodAccountBalance
	}
	p = payment.NewPayment(input.UserID, money.FromCents(cents), method, payment.TypeWithdrawal, input.Reference)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var balance float64
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		var txErr error
		if balance, txErr = s.userRepo.AdjustBalance(ctx, tx, input.UserID, -cents); txErr != nil {
			return txErr
		}
		return s.paymentRepo.Create(ctx, tx, p)
	})
	if err != nil {
		if errors.Is(err, payment.ErrReferenceExists) {
			// 同じ参照の並行引き落としに先を越された
			return s.paymentRepo.GetByReference(ctx, input.Reference)
		}
		return nil, fmt.Errorf("引き落としの作成に失敗: %w", err)
	}

	logger.Info("引き落とし完了",
		logger.UserID(input.UserID), logger.PaymentID(p.ID), logger.Amount(p.Amount))
	s.notify(ctx, input.UserID, notification.TypeWithdrawal,
		fmt.Sprintf("A withdrawal of %.2f has been made from your account. New balance: %.2f", p.Amount, balance))
	return p, nil
}

// Refund は対象の引き落としを返金済みにして input.Amount を残高に戻す
// 返金済みの支払いには ErrAlreadyRefunded を返す
func (s *SettlementService) Refund(ctx context.Context, input RefundInput) (p *payment.Payment, err error) {
	defer func() {
		metrics.Get().ObserveSettlement(settlementRefund, err, input.Amount)
	}()

	cents := money.ToCents(input.Amount)
	if cents < 0 {
		return nil, payment.ErrInvalidAmount
	}

	p, err = s.refundable(ctx, input, cents)
	if err != nil {
		return p, err
	}

	if err := p.MarkRefunded(); err != nil {
		return p, err
	}

	var balance float64
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		if txErr := s.paymentRepo.MarkRefunded(ctx, tx, p); txErr != nil {
			return txErr
		}
		var txErr error
		balance, txErr = s.userRepo.AdjustBalance(ctx, tx, input.UserID, cents)
		return txErr
	})
	if err != nil {
		if errors.Is(err, payment.ErrAlreadyRefunded) {
			return p, err
		}
		return nil, fmt.Errorf("支払いの返金に失敗: %w", err)
	}

	logger.Info("返金完了",
		logger.UserID(input.UserID), logger.PaymentID(p.ID), logger.Amount(input.Amount))
	s.notify(ctx, input.UserID, notification.TypeRefund,
		fmt.Sprintf("A refund of %.2f has been credited to your account. New balance: %.2f", money.FromCents(cents), balance))
	return p, nil
}

// refundable は返金対象の引き落としを特定する
func (s *SettlementService) refundable(ctx context.Context, input RefundInput, cents int64) (*payment.Payment, error) {
	var (
		p   *payment.Payment
		err error
	)
	switch {
	case input.PaymentID != "":
		p, err = s.paymentRepo.GetByID(ctx, input.PaymentID)
	case input.Reference != "":
		p, err = s.paymentRepo.GetByReference(ctx, input.Reference)
		if err == nil && p.Type != payment.TypeWithdrawal {
			return nil, payment.ErrPaymentNotFound
		}
	default:
		return s.paymentRepo.FindCompletedWithdrawal(ctx, input.UserID, cents)
	}
	if err != nil {
		return nil, err
	}

	if p.UserID != input.UserID {
		return nil, payment.ErrPaymentNotOwned
	}
	if money.ToCents(p.Amount) != cents {
		logger.Warn("返金額が引き落とし額と異なる",
			logger.PaymentID(p.ID), logger.Amount(input.Amount), zap.Float64("withdrawn", p.Amount))
	}
	return p, nil
}

// Deposit は残高に入金して入金を記録する
func (s *SettlementService) Deposit(ctx context.Context, input DepositInput) (p *payment.Payment, err error) {
	defer func() {
		metrics.Get().ObserveSettlement(settlementDeposit, err, input.Amount)
	}()

	cents := money.ToCents(input.Amount)
	if cents <= 0 {
		return nil, payment.ErrInvalidAmount
	}
	if _, err := s.userRepo.GetByID(ctx, input.UserID, false); err != nil {
		return nil, err
	}

	method := input.Method
	if method == "" {
		method = payment.MethodCard
	}
	p = payment.NewPayment(input.UserID, money.FromCents(cents), method, payment.TypeDeposit, "")

	var balance float64
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		var txErr error
		if balance, txErr = s.userRepo.AdjustBalance(ctx, tx, input.UserID, cents); txErr != nil {
			return txErr
		}
		return s.paymentRepo.Create(ctx, tx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("入金の作成に失敗: %w", err)
	}

	s.notify(ctx, input.UserID, notification.TypeDeposit,
		fmt.Sprintf("A deposit of %.2f has been credited to your account. New balance: %.2f", p.Amount, balance))
	return p, nil
}

func (s *SettlementService) ListUserPayments(ctx context.Context, userID string, limit, offset int) ([]*payment.Payment, error) {
	return s.paymentRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *SettlementService) notify(ctx context.Context, userID string, typ notification.Type, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Create(ctx, notification.New(userID, typ, message)); err != nil {
		logger.Warn("精算通知の送信エラー",
			logger.UserID(userID), zap.String("type", string(typ)), zap.Error(err))
	}
}

var _ Settlement = (*SettlementService)(nil)
