package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/mail"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-aeroclub-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/metrics"
)

// DisplayTimeLayout はメールと通知での時刻表記
const DisplayTimeLayout = "2006-01-02 15:04"

const (
	defaultRecentLimit    = 10
	reconcileBatchSize    = 100
	defaultLockTTL        = 10 * time.Second
	defaultLockRetries    = 3
	defaultLockRetryDelay = 100 * time.Millisecond
)

// ReservationOptions はロックと表示の設定
type ReservationOptions struct {
	LockTTL           time.Duration
	LockRetries       int
	LockRetryInterval time.Duration
	Location          *time.Location
}

func (o ReservationOptions) withDefaults() ReservationOptions {
	if o.LockTTL <= 0 {
		o.LockTTL = defaultLockTTL
	}
	if o.LockRetries <= 0 {
		o.LockRetries = defaultLockRetries
	}
	if o.LockRetryInterval <= 0 {
		o.LockRetryInterval = defaultLockRetryDelay
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// ReservationService は予約の作成・変更・キャンセルとそれに伴う精算を扱う
type ReservationService struct {
	reservationRepo reservation.Repository
	aircraftRepo    aircraft.Repository
	userRepo        user.Repository
	policies        PolicySource
	settlement      Settlement
	notifier        notification.Dispatcher
	mailer          mail.Dispatcher
	lockManager     redisinfra.LockManagerInterface
	availability    *AvailabilityChecker
	eligibility     EligibilityValidator
	opts            ReservationOptions
}

// NewReservationService は予約サービスを作成する
// lockManager が nil なら機体ロックは行わない（DBの排他制約は有効なまま）
func NewReservationService(
	rr reservation.Repository,
	ar aircraft.Repository,
	ur user.Repository,
	policies PolicySource,
	settlement Settlement,
	notifier notification.Dispatcher,
	mailer mail.Dispatcher,
	lm redisinfra.LockManagerInterface,
	opts ReservationOptions,
) *ReservationService {
	return &ReservationService{
		reservationRepo: rr,
		aircraftRepo:    ar,
		userRepo:        ur,
		policies:        policies,
		settlement:      settlement,
		notifier:        notifier,
		mailer:          mailer,
		lockManager:     lm,
		availability:    NewAvailabilityChecker(rr),
		opts:            opts.withDefaults(),
	}
}

type CreateReservationInput struct {
	AircraftID           string
	UserID               string
	StartTime            time.Time
	EndTime              time.Time
	ReservationDate      *time.Time
	EstimatedFlightHours *float64
	Purpose              string
	Notes                string
	FlightCategory       string
}

// CreateReservation は予約を検証・保存して精算する
// 検証は機体、空き状況、ユーザー、ポリシー、資格の順
// 保存後の引き落としと飛行時間更新の失敗はログに残し、リコンサイラーに任せる
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	res := reservation.NewReservation(input.AircraftID, input.UserID, input.StartTime, input.EndTime)
	if input.ReservationDate != nil {
		res.ReservationDate = *input.ReservationDate
	}
	res.EstimatedFlightHours = input.EstimatedFlightHours
	res.Purpose = input.Purpose
	res.Notes = input.Notes
	res.FlightCategory = input.FlightCategory
	if err := res.Validate(); err != nil {
		metrics.Get().ObserveReservation(metrics.ReservationRejected)
		return nil, err
	}

	ac, err := s.aircraftRepo.GetByID(ctx, input.AircraftID)
	if err != nil {
		return nil, err
	}

	var (
		u    *user.User
		cost float64
	)
	err = s.withAircraftLock(ctx, ac.ID, func() error {
		conflict, err := s.availability.HasConflict(ctx, ac.ID, res.StartTime, res.EndTime)
		if err != nil {
			return err
		}
		if conflict {
			return reservation.ErrTimeSlotConflict
		}

		u, err = s.userRepo.GetByID(ctx, input.UserID, true)
		if err != nil {
			return err
		}
		policy, err := s.policies.Policy(ctx)
		if err != nil {
			return err
		}
		cost = reservation.Cost(ac.HourlyCost, res.StartTime, res.EndTime)
		if err := s.eligibility.Validate(u, policy, cost); err != nil {
			return err
		}

		return s.reservationRepo.Create(ctx, res)
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	log := logger.With(logger.ReservationID(res.ID), logger.UserID(u.ID), logger.AircraftID(ac.ID))

	if err := s.settle(ctx, res, cost); errors.Is(err, user.ErrInsufficientBalance) {
		// 資格チェック後に別の予約で残高が使われた
		if delErr := s.reservationRepo.Delete(ctx, res.ID); delErr != nil {
			log.Error("未払い予約の削除に失敗", zap.Error(delErr))
		}
		metrics.Get().ObserveReservation(metrics.ReservationRejected)
		return nil, ErrInsufficientBalance
	}
	log.Info("予約作成", logger.Amount(cost))

	if err := s.userRepo.AdjustFlightHours(ctx, u.ID, res.Hours()); err != nil {
		log.Error("飛行時間の加算に失敗", zap.Error(err))
	}

	s.sendMail(ctx, mail.Message{
		To:       u.Email,
		Subject:  "Reservation confirmed",
		Text:     fmt.Sprintf("Your reservation of %s from %s to %s is confirmed.", ac.RegistrationNumber, s.format(res.StartTime), s.format(res.EndTime)),
		Template: mail.TemplateReservationConfirmed,
		Variables: map[string]any{
			"firstName":          u.FirstName,
			"registrationNumber": ac.RegistrationNumber,
			"startTime":          s.format(res.StartTime),
			"endTime":            s.format(res.EndTime),
			"cost":               fmt.Sprintf("%.2f", cost),
		},
	})
	s.notify(ctx, u.ID, notification.TypeReservationConfirmed,
		fmt.Sprintf("Your reservation of %s from %s to %s is confirmed.", ac.RegistrationNumber, s.format(res.StartTime), s.format(res.EndTime)))

	metrics.Get().ObserveReservation(metrics.ReservationCreated)
	return res, nil
}

type UpdateReservationInput struct {
	ID                   string
	AircraftID           *string
	StartTime            *time.Time
	EndTime              *time.Time
	ReservationDate      *time.Time
	EstimatedFlightHours *float64
	Purpose              *string
	Notes                *string
	FlightCategory       *string
}

// UpdateReservation は指定されたフィールドを反映する
// 機体か時間帯が変わった場合は競合とライセンスを再検証する。精算はやり直さない
func (s *ReservationService) UpdateReservation(ctx context.Context, input UpdateReservationInput) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	previous := res.Window()

	aircraftID := res.AircraftID
	if input.AircraftID != nil {
		aircraftID = *input.AircraftID
	}
	ac, err := s.aircraftRepo.GetByID(ctx, aircraftID)
	if err != nil {
		return nil, err
	}

	rescheduled := ac.ID != res.AircraftID
	res.AircraftID = ac.ID
	if input.StartTime != nil && !input.StartTime.Equal(res.StartTime) {
		res.StartTime = *input.StartTime
		rescheduled = true
	}
	if input.EndTime != nil && !input.EndTime.Equal(res.EndTime) {
		res.EndTime = *input.EndTime
		rescheduled = true
	}
	if input.ReservationDate != nil {
		res.ReservationDate = *input.ReservationDate
	}
	if input.EstimatedFlightHours != nil {
		res.EstimatedFlightHours = input.EstimatedFlightHours
	}
	if input.Purpose != nil {
		res.Purpose = *input.Purpose
	}
	if input.Notes != nil {
		res.Notes = *input.Notes
	}
	if input.FlightCategory != nil {
		res.FlightCategory = *input.FlightCategory
	}
	res.UpdatedAt = time.Now()

	if !rescheduled {
		if err := s.reservationRepo.Update(ctx, res); err != nil {
			return nil, err
		}
	} else {
		if err := res.Validate(); err != nil {
			metrics.Get().ObserveReservation(metrics.ReservationRejected)
			return nil, err
		}
		err = s.withAircraftLock(ctx, ac.ID, func() error {
			conflict, err := s.availability.HasConflictExcluding(ctx, ac.ID, res.StartTime, res.EndTime, res.ID)
			if err != nil {
				return err
			}
			if conflict {
				return reservation.ErrTimeSlotConflict
			}
			u, err := s.userRepo.GetByID(ctx, res.UserID, true)
			if err != nil {
				return err
			}
			policy, err := s.policies.Policy(ctx)
			if err != nil {
				return err
			}
			if err := s.eligibility.ValidateLicenses(u, policy); err != nil {
				return err
			}
			return s.reservationRepo.Update(ctx, res)
		})
		if err != nil {
			s.observeFailure(err)
			return nil, err
		}
	}

	logger.Info("予約更新", logger.ReservationID(res.ID), zap.Bool("rescheduled", rescheduled))

	u, err := s.userRepo.GetByID(ctx, res.UserID, false)
	switch {
	case err == nil:
		text := fmt.Sprintf("Your reservation of %s has been changed from %s - %s to %s - %s.",
			ac.RegistrationNumber,
			s.format(previous.Start), s.format(previous.End),
			s.format(res.StartTime), s.format(res.EndTime))
		s.sendMail(ctx, mail.Message{
			To:       u.Email,
			Subject:  "Reservation modified",
			Text:     text,
			Template: mail.TemplateReservationModified,
			Variables: map[string]any{
				"firstName":          u.FirstName,
				"registrationNumber": ac.RegistrationNumber,
				"previousStartTime":  s.format(previous.Start),
				"previousEndTime":    s.format(previous.End),
				"startTime":          s.format(res.StartTime),
				"endTime":            s.format(res.EndTime),
			},
		})
		s.notify(ctx, u.ID, notification.TypeReservationModified, text)
	case errors.Is(err, user.ErrUserNotFound):
	default:
		logger.Warn("変更通知用のユーザー取得に失敗", logger.ReservationID(res.ID), zap.Error(err))
	}

	metrics.Get().ObserveReservation(metrics.ReservationUpdated)
	return res, nil
}

// CancelReservation は機体の現在の単価で返金して予約を削除する
// 返金に失敗した場合は予約を残す
func (s *ReservationService) CancelReservation(ctx context.Context, id string) error {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ac, err := s.aircraftRepo.GetByID(ctx, res.AircraftID)
	if err != nil {
		return err
	}

	u, err := s.userRepo.GetByID(ctx, res.UserID, false)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return err
	}

	cost := reservation.Cost(ac.HourlyCost, res.StartTime, res.EndTime)
	if u != nil {
		if err := s.refund(ctx, res, cost); err != nil {
			metrics.Get().ObserveReservation(metrics.ReservationError)
			return err
		}
	}

	if err := s.reservationRepo.Delete(ctx, res.ID); err != nil {
		return err
	}
	logger.Info("予約キャンセル", logger.ReservationID(res.ID), logger.Amount(cost))

	if u == nil {
		metrics.Get().ObserveReservation(metrics.ReservationCancelled)
		return nil
	}

	if err := s.userRepo.AdjustFlightHours(ctx, u.ID, -res.Hours()); err != nil {
		logger.Error("飛行時間の減算に失敗", logger.ReservationID(res.ID), zap.Error(err))
	}

	text := fmt.Sprintf("Your reservation of %s from %s to %s has been cancelled. %.2f has been refunded.",
		ac.RegistrationNumber, s.format(res.StartTime), s.format(res.EndTime), cost)
	s.sendMail(ctx, mail.Message{
		To:       u.Email,
		Subject:  "Reservation cancelled",
		Text:     text,
		Template: mail.TemplateReservationCancelled,
		Variables: map[string]any{
			"firstName":          u.FirstName,
			"registrationNumber": ac.RegistrationNumber,
			"startTime":          s.format(res.StartTime),
			"endTime":            s.format(res.EndTime),
			"refund":             fmt.Sprintf("%.2f", cost),
		},
	})
	s.notify(ctx, u.ID, notification.TypeReservationCancelled, text)

	metrics.Get().ObserveReservation(metrics.ReservationCancelled)
	return nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

func (s *ReservationService) ListReservations(ctx context.Context, limit, offset int) ([]*reservation.Reservation, error) {
	return s.reservationRepo.List(ctx, limit, offset)
}

func (s *ReservationService) GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	return s.reservationRepo.GetByUserID(ctx, userID, limit, offset)
}

// ListByDateRange は開始時刻が [start, end] に含まれる予約を返す
func (s *ReservationService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*reservation.Reservation, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, reservation.ErrInvalidTimeWindow
	}
	return s.reservationRepo.GetByStartRange(ctx, start, end)
}

func (s *ReservationService) ListRecent(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.reservationRepo.ListRecent(ctx, limit)
}

// ReconcileSettlements は grace より古い未精算の確定予約の引き落としを再試行する
// 精算できた件数を返す
func (s *ReservationService) ReconcileSettlements(ctx context.Context, grace time.Duration) (int, error) {
	pending, err := s.reservationRepo.GetUnsettled(ctx, time.Now().Add(-grace), reconcileBatchSize)
	if err != nil {
		return 0, fmt.Errorf("未精算予約の取得に失敗: %w", err)
	}

	settled := 0
	for _, res := range pending {
		select {
		case <-ctx.Done():
			metrics.Get().SetUnsettled(len(pending) - settled)
			return settled, ctx.Err()
		default:
		}

		ac, err := s.aircraftRepo.GetByID(ctx, res.AircraftID)
		if err != nil {
			logger.Error("精算用の機体取得に失敗", logger.ReservationID(res.ID), zap.Error(err))
			continue
		}
		if s.settle(ctx, res, reservation.Cost(ac.HourlyCost, res.StartTime, res.EndTime)) == nil {
			settled++
		}
	}

	metrics.Get().SetUnsettled(len(pending) - settled)
	return settled, nil
}

// settle は res の料金を引き落として支払いを紐付ける（失敗はログに残して返す）
func (s *ReservationService) settle(ctx context.Context, res *reservation.Reservation, cost float64) error {
	p, err := s.settlement.CreateWithdrawal(ctx, WithdrawalInput{
		UserID:    res.UserID,
		Amount:    cost,
		Method:    payment.MethodAccountBalance,
		Reference: res.ID,
	})
	if err != nil {
		logger.Error("引き落とし失敗、予約は未精算のまま",
			logger.ReservationID(res.ID), logger.UserID(res.UserID), logger.Amount(cost), zap.Error(err))
		return err
	}
	if err := s.reservationRepo.LinkPayment(ctx, res.ID, p.ID); err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			s.refundOrphan(ctx, res, p)
			return err
		}
		logger.Error("予約への支払い紐付けに失敗",
			logger.ReservationID(res.ID), logger.PaymentID(p.ID), zap.Error(err))
		return err
	}
	res.PaymentID = p.ID
	return nil
}

// refundOrphan は支払い紐付け前に予約がキャンセルされた引き落としを返金する
func (s *ReservationService) refundOrphan(ctx context.Context, res *reservation.Reservation, p *payment.Payment) {
	_, err := s.settlement.Refund(ctx, RefundInput{UserID: res.UserID, Amount: p.Amount, PaymentID: p.ID})
	switch {
	case err == nil:
		logger.Warn("精算中に予約がキャンセルされたため引き落としを返金",
			logger.ReservationID(res.ID), logger.PaymentID(p.ID), logger.Amount(p.Amount))
	case errors.Is(err, payment.ErrAlreadyRefunded):
	default:
		logger.Error("キャンセル済み予約の引き落とし返金に失敗",
			logger.ReservationID(res.ID), logger.PaymentID(p.ID), logger.Amount(p.Amount), zap.Error(err))
	}
}

// refund は res の引き落としを返金する
// 支払い未紐付けの予約は引き落としの参照から特定する
func (s *ReservationService) refund(ctx context.Context, res *reservation.Reservation, cost float64) error {
	input := RefundInput{UserID: res.UserID, Amount: cost, PaymentID: res.PaymentID}
	if res.PaymentID == "" {
		input.Reference = res.ID
	}
	_, err := s.settlement.Refund(ctx, input)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, payment.ErrAlreadyRefunded):
		logger.Info("支払いは返金済み", logger.ReservationID(res.ID), logger.PaymentID(res.PaymentID))
		return nil
	case res.PaymentID == "" && errors.Is(err, payment.ErrPaymentNotFound):
		// 未精算なので返金不要
		logger.Warn("未精算予約の引き落としなし", logger.ReservationID(res.ID), logger.Amount(cost))
		return nil
	default:
		return fmt.Errorf("予約の返金に失敗: %w", err)
	}
}

func (s *ReservationService) withAircraftLock(ctx context.Context, aircraftID string, fn func() error) error {
	if s.lockManager == nil {
		return fn()
	}

	started := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.AircraftLockKey(aircraftID),
		s.opts.LockTTL, s.opts.LockRetries, s.opts.LockRetryInterval)
	metrics.Get().ObserveLock("acquire", err, started)
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return reservation.ErrAircraftBusy
		}
		return fmt.Errorf("機体ロック取得に失敗: %w", err)
	}
	defer func() {
		released := time.Now()
		err := lock.Release(ctx)
		metrics.Get().ObserveLock("release", err, released)
		if err != nil {
			logger.Warn("機体ロック解放エラー", logger.AircraftID(aircraftID), zap.Error(err))
		}
	}()

	return fn()
}

func (s *ReservationService) observeFailure(err error) {
	switch {
	case errors.Is(err, reservation.ErrTimeSlotConflict):
		metrics.Get().ObserveReservation(metrics.ReservationConflict)
	case errors.Is(err, reservation.ErrAircraftBusy):
		metrics.Get().ObserveReservation(metrics.ReservationLockBusy)
	case errors.Is(err, ErrUnauthorizedLicense), errors.Is(err, ErrInsufficientBalance):
		metrics.Get().ObserveReservation(metrics.ReservationRejected)
	default:
		metrics.Get().ObserveReservation(metrics.ReservationError)
	}
}

func (s *ReservationService) format(t time.Time) string {
	return t.In(s.opts.Location).Format(DisplayTimeLayout)
}

func (s *ReservationService) sendMail(ctx context.Context, msg mail.Message) {
	if s.mailer == nil || msg.To == "" {
		return
	}
	if err := s.mailer.SendMail(ctx, msg); err != nil {
		logger.Warn("メール送信エラー", zap.String("template", msg.Template), zap.Error(err))
	}
}

func (s *ReservationService) notify(ctx context.Context, userID string, typ notification.Type, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Create(ctx, notification.New(userID, typ, message)); err != nil {
		logger.Warn("通知送信エラー",
			logger.UserID(userID), zap.String("type", string(typ)), zap.Error(err))
	}
}
