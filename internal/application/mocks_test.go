package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/mail"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-aeroclub-reservation/internal/infrastructure/redis"
)

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockReservationRepository implements reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) List(ctx context.Context, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByStartRange(ctx context.Context, start, end time.Time) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListRecent(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindOverlapping(ctx context.Context, aircraftID string, start, end time.Time, excludeID string) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, aircraftID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetUnsettled(ctx context.Context, createdBefore time.Time, limit int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, createdBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Update(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) LinkPayment(ctx context.Context, id, paymentID string) error {
	args := m.Called(ctx, id, paymentID)
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAircraftRepository implements aircraft.Repository
type MockAircraftRepository struct {
	mock.Mock
}

func (m *MockAircraftRepository) Create(ctx context.Context, a *aircraft.Aircraft) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAircraftRepository) GetByID(ctx context.Context, id string) (*aircraft.Aircraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aircraft.Aircraft), args.Error(1)
}

func (m *MockAircraftRepository) List(ctx context.Context, limit, offset int) ([]*aircraft.Aircraft, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*aircraft.Aircraft), args.Error(1)
}

func (m *MockAircraftRepository) Update(ctx context.Context, a *aircraft.Aircraft) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockUserRepository implements user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string, withLicenses bool) (*user.User, error) {
	args := m.Called(ctx, id, withLicenses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) AdjustBalance(ctx context.Context, tx transaction.Tx, id string, deltaCents int64) (float64, error) {
	args := m.Called(ctx, tx, id, deltaCents)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockUserRepository) AdjustFlightHours(ctx context.Context, id string, delta float64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// MockPaymentRepository implements payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindCompletedWithdrawal(ctx context.Context, userID string, amountCents int64) (*payment.Payment, error) {
	args := m.Called(ctx, userID, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkRefunded(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

// MockAdministrationRepository implements administration.Repository
type MockAdministrationRepository struct {
	mock.Mock
}

func (m *MockAdministrationRepository) FindAll(ctx context.Context) ([]*administration.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*administration.Settings), args.Error(1)
}

func (m *MockAdministrationRepository) Save(ctx context.Context, s *administration.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockPolicySource implements PolicySource
type MockPolicySource struct {
	mock.Mock
}

func (m *MockPolicySource) Policy(ctx context.Context) (administration.LicensePolicy, error) {
	args := m.Called(ctx)
	return args.Get(0).(administration.LicensePolicy), args.Error(1)
}

// MockSettlement implements Settlement
type MockSettlement struct {
	mock.Mock
}

func (m *MockSettlement) CreateWithdrawal(ctx context.Context, input WithdrawalInput) (*payment.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockSettlement) Refund(ctx context.Context, input RefundInput) (*payment.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

// MockNotifier implements notification.Dispatcher
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockMailer implements mail.Dispatcher
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendMail(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryInterval time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryInterval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockPolicyCache implements redisinfra.PolicyCacheInterface
type MockPolicyCache struct {
	mock.Mock
}

func (m *MockPolicyCache) GetLicenses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPolicyCache) SetLicenses(ctx context.Context, licenses []string, ttl time.Duration) error {
	args := m.Called(ctx, licenses, ttl)
	return args.Error(0)
}

func (m *MockPolicyCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
