package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/mail"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/money"
)

// シナリオテストとプロパティテスト用のインメモリ実装
// 予約ストアは排他制約と同じく有効な予約の重複を拒否する

type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

type memTxManager struct{}

func (memTxManager) Begin(context.Context) (transaction.Tx, error) { return memTx{}, nil }

type memReservations struct {
	mu    sync.Mutex
	items map[string]*reservation.Reservation
}

func newMemReservations() *memReservations {
	return &memReservations{items: map[string]*reservation.Reservation{}}
}

func (m *memReservations) overlapping(aircraftID string, w reservation.Window, excludeID string) []*reservation.Reservation {
	var result []*reservation.Reservation
	for _, r := range m.items {
		if r.AircraftID != aircraftID || r.ID == excludeID || !r.IsLive() {
			continue
		}
		if r.StartTime.Before(w.End) && r.EndTime.After(w.Start) {
			c := *r
			result = append(result, &c)
		}
	}
	return result
}

func (m *memReservations) Create(_ context.Context, r *reservation.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.overlapping(r.AircraftID, r.Window(), "")) > 0 {
		return reservation.ErrTimeSlotConflict
	}
	r.ID = uuid.NewString()
	c := *r
	m.items[r.ID] = &c
	return nil
}

func (m *memReservations) GetByID(_ context.Context, id string) (*reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	c := *r
	return &c, nil
}

func (m *memReservations) all() []*reservation.Reservation {
	result := make([]*reservation.Reservation, 0, len(m.items))
	for _, r := range m.items {
		c := *r
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result
}

func (m *memReservations) List(_ context.Context, limit, offset int) ([]*reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.all(), limit, offset), nil
}

func (m *memReservations) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []*reservation.Reservation
	for _, r := range m.all() {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	return page(mine, limit, offset), nil
}

func (m *memReservations) GetByStartRange(_ context.Context, start, end time.Time) ([]*reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*reservation.Reservation
	for _, r := range m.all() {
		if !r.StartTime.Before(start) && !r.StartTime.After(end) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *memReservations) ListRecent(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	return m.List(ctx, limit, 0)
}

func (m *memReservations) FindOverlapping(_ context.Context, aircraftID string, start, end time.Time, excludeID string) ([]*reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapping(aircraftID, reservation.Window{Start: start, End: end}, excludeID), nil
}

func (m *memReservations) GetUnsettled(_ context.Context, createdBefore time.Time, limit int) ([]*reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*reservation.Reservation
	for _, r := range m.all() {
		if r.PaymentID == "" && r.Status == reservation.StatusConfirmed && r.CreatedAt.Before(createdBefore) {
			result = append(result, r)
		}
	}
	return page(result, limit, 0), nil
}

func (m *memReservations) Update(_ context.Context, r *reservation.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[r.ID]; !ok {
		return reservation.ErrReservationNotFound
	}
	if len(m.overlapping(r.AircraftID, r.Window(), r.ID)) > 0 {
		return reservation.ErrTimeSlotConflict
	}
	c := *r
	m.items[r.ID] = &c
	return nil
}

func (m *memReservations) LinkPayment(_ context.Context, id, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	r.PaymentID = paymentID
	return nil
}

func (m *memReservations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return reservation.ErrReservationNotFound
	}
	delete(m.items, id)
	return nil
}

// backdate は保存済み予約の作成時刻を過去にずらす
func (m *memReservations) backdate(id string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].CreatedAt = m.items[id].CreatedAt.Add(-d)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type memUsers struct {
	mu      sync.Mutex
	users   map[string]*user.User
	balance map[string]int64
}

func newMemUsers(users ...*user.User) *memUsers {
	m := &memUsers{users: map[string]*user.User{}, balance: map[string]int64{}}
	for _, u := range users {
		m.users[u.ID] = u
		m.balance[u.ID] = money.ToCents(u.AccountBalance)
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string, withLicenses bool) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	c := *u
	c.AccountBalance = money.FromCents(m.balance[id])
	if !withLicenses {
		c.Licenses = nil
	}
	return &c, nil
}

func (m *memUsers) AdjustBalance(_ context.Context, _ transaction.Tx, id string, deltaCents int64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return 0, user.ErrUserNotFound
	}
	if deltaCents < 0 && m.balance[id]+deltaCents < 0 {
		return 0, user.ErrInsufficientBalance
	}
	m.balance[id] += deltaCents
	return money.FromCents(m.balance[id]), nil
}

func (m *memUsers) AdjustFlightHours(_ context.Context, id string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.TotalFlightHours += delta
	return nil
}

func (m *memUsers) Balance(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return money.FromCents(m.balance[id])
}

func (m *memUsers) Hours(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].TotalFlightHours
}

type memPayments struct {
	mu    sync.Mutex
	items []*payment.Payment
}

func (m *memPayments) Create(_ context.Context, _ transaction.Tx, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Reference != "" {
		for _, existing := range m.items {
			if existing.Reference == p.Reference {
				return payment.ErrReferenceExists
			}
		}
	}
	p.ID = uuid.NewString()
	c := *p
	m.items = append(m.items, &c)
	return nil
}

func (m *memPayments) find(match func(*payment.Payment) bool) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if match(p) {
			c := *p
			return &c, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

func (m *memPayments) GetByID(_ context.Context, id string) (*payment.Payment, error) {
	return m.find(func(p *payment.Payment) bool { return p.ID == id })
}

func (m *memPayments) GetByReference(_ context.Context, reference string) (*payment.Payment, error) {
	return m.find(func(p *payment.Payment) bool { return p.Reference == reference })
}

func (m *memPayments) FindCompletedWithdrawal(_ context.Context, userID string, amountCents int64) (*payment.Payment, error) {
	return m.find(func(p *payment.Payment) bool {
		return p.UserID == userID && p.Type == payment.TypeWithdrawal &&
			p.Status == payment.StatusCompleted && p.Reference == "" && money.ToCents(p.Amount) == amountCents
	})
}

func (m *memPayments) MarkRefunded(_ context.Context, _ transaction.Tx, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ID == p.ID {
			if existing.Status != payment.StatusCompleted {
				return payment.ErrAlreadyRefunded
			}
			existing.Status = p.Status
			existing.RefundedAt = p.RefundedAt
			return nil
		}
	}
	return payment.ErrPaymentNotFound
}

func (m *memPayments) GetByUserID(_ context.Context, userID string, limit, offset int) ([]*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*payment.Payment
	for _, p := range m.items {
		if p.UserID == userID {
			c := *p
			result = append(result, &c)
		}
	}
	return page(result, limit, offset), nil
}

type memAircraft struct {
	mu    sync.Mutex
	items map[string]*aircraft.Aircraft
}

func newMemAircraft(items ...*aircraft.Aircraft) *memAircraft {
	m := &memAircraft{items: map[string]*aircraft.Aircraft{}}
	for _, a := range items {
		m.items[a.ID] = a
	}
	return m
}

func (m *memAircraft) Create(_ context.Context, a *aircraft.Aircraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.NewString()
	m.items[a.ID] = a
	return nil
}

func (m *memAircraft) GetByID(_ context.Context, id string) (*aircraft.Aircraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, aircraft.ErrAircraftNotFound
	}
	c := *a
	return &c, nil
}

func (m *memAircraft) List(context.Context, int, int) ([]*aircraft.Aircraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*aircraft.Aircraft, 0, len(m.items))
	for _, a := range m.items {
		result = append(result, a)
	}
	return result, nil
}

func (m *memAircraft) Update(_ context.Context, a *aircraft.Aircraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[a.ID] = a
	return nil
}

type memSettings struct {
	items []*administration.Settings
}

func (m *memSettings) FindAll(context.Context) ([]*administration.Settings, error) {
	return m.items, nil
}

func (m *memSettings) Save(_ context.Context, s *administration.Settings) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
		m.items = append(m.items, s)
	}
	return nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []*notification.Notification
}

func (m *memNotifications) Create(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, n)
	return nil
}

func (m *memNotifications) Publish(ctx context.Context, n *notification.Notification) error {
	return m.Create(ctx, n)
}

func (m *memNotifications) types() []notification.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]notification.Type, len(m.items))
	for i, n := range m.items {
		result[i] = n.NotificationType
	}
	return result
}

type memMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *memMailer) SendMail(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// club は全て結線済みのインメモリ予約システム
type club struct {
	reservations  *memReservations
	users         *memUsers
	payments      *memPayments
	aircraft      *memAircraft
	notifications *memNotifications
	mailer        *memMailer
	admin         *AdministrationService
	settlement    *SettlementService
	service       *ReservationService
}

func newClub(authorized []string, fleet []*aircraft.Aircraft, members ...*user.User) *club {
	c := &club{
		reservations:  newMemReservations(),
		users:         newMemUsers(members...),
		payments:      &memPayments{},
		aircraft:      newMemAircraft(fleet...),
		notifications: &memNotifications{},
		mailer:        &memMailer{},
	}
	settings := &memSettings{items: []*administration.Settings{{ID: "settings-1", PilotLicenses: authorized}}}
	c.admin = NewAdministrationService(settings, nil, 0)
	c.settlement = NewSettlementService(memTxManager{}, c.payments, c.users, c.notifications)
	c.rewire(c.reservations, c.settlement)
	return c
}

// rewire は指定した依存で予約サービスを作り直す
func (c *club) rewire(reservations reservation.Repository, settlement Settlement) {
	c.service = NewReservationService(reservations, c.aircraft, c.users, c.admin, settlement,
		c.notifications, c.mailer, nil, ReservationOptions{})
}

// flakyWithdrawals は failing が立っている間すべての引き落としを失敗させる
type flakyWithdrawals struct {
	Settlement
	failing atomic.Bool
}

func (f *flakyWithdrawals) CreateWithdrawal(ctx context.Context, input WithdrawalInput) (*payment.Payment, error) {
	if f.failing.Load() {
		return nil, errors.New("ledger unavailable")
	}
	return f.Settlement.CreateWithdrawal(ctx, input)
}

// unlinkedPayments は予約に触れずに LinkPayment を失敗させる
type unlinkedPayments struct {
	*memReservations
}

func (unlinkedPayments) LinkPayment(context.Context, string, string) error {
	return errors.New("connection reset")
}

// cancelDuringScan は未精算予約の一覧取得直後にそれぞれ cancel を実行する
type cancelDuringScan struct {
	*memReservations
	cancel func(id string)
}

func (w *cancelDuringScan) GetUnsettled(ctx context.Context, createdBefore time.Time, limit int) ([]*reservation.Reservation, error) {
	pending, err := w.memReservations.GetUnsettled(ctx, createdBefore, limit)
	for _, r := range pending {
		w.cancel(r.ID)
	}
	return pending, err
}
