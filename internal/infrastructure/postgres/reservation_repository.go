package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
)

const reservationColumns = `id, aircraft_id, user_id, start_time, end_time, reservation_date,
	estimated_flight_hours, purpose, notes, flight_category, status, payment_id, created_at, updated_at`

type reservationRow struct {
	ID                   string          `db:"id"`
	AircraftID           string          `db:"aircraft_id"`
	UserID               string          `db:"user_id"`
	StartTime            time.Time       `db:"start_time"`
	EndTime              time.Time       `db:"end_time"`
	ReservationDate      time.Time       `db:"reservation_date"`
	EstimatedFlightHours sql.NullFloat64 `db:"estimated_flight_hours"`
	Purpose              sql.NullString  `db:"purpose"`
	Notes                sql.NullString  `db:"notes"`
	FlightCategory       sql.NullString  `db:"flight_category"`
	Status               string          `db:"status"`
	PaymentID            sql.NullString  `db:"payment_id"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	res := &reservation.Reservation{
		ID:              r.ID,
		AircraftID:      r.AircraftID,
		UserID:          r.UserID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		ReservationDate: r.ReservationDate,
		Purpose:         r.Purpose.String,
		Notes:           r.Notes.String,
		FlightCategory:  r.FlightCategory.String,
		Status:          reservation.Status(r.Status),
		PaymentID:       r.PaymentID.String,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.EstimatedFlightHours.Valid {
		h := r.EstimatedFlightHours.Float64
		res.EstimatedFlightHours = &h
	}
	return res
}

func toRows(rows []reservationRow) []*reservation.Reservation {
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	query := `INSERT INTO reservations (aircraft_id, user_id, start_time, end_time, reservation_date,
		estimated_flight_hours, purpose, notes, flight_category, status, payment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		res.AircraftID, res.UserID, res.StartTime, res.EndTime, res.ReservationDate,
		nullFloat(res.EstimatedFlightHours), nullString(res.Purpose), nullString(res.Notes),
		nullString(res.FlightCategory), string(res.Status), nullString(res.PaymentID),
		res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		if pqCode(err) == pqExclusionViolation {
			return reservation.ErrTimeSlotConflict
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) List(ctx context.Context, limit, offset int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY start_time DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toRows(rows), nil
}

func (r *ReservationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		if isInvalidID(err) {
			return []*reservation.Reservation{}, nil
		}
		return nil, fmt.Errorf("ユーザー予約一覧取得に失敗: %w", err)
	}
	return toRows(rows), nil
}

func (r *ReservationRepository) GetByStartRange(ctx context.Context, start, end time.Time) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE start_time BETWEEN $1 AND $2 ORDER BY start_time ASC`
	if err := r.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("期間指定の予約取得に失敗: %w", err)
	}
	return toRows(rows), nil
}

func (r *ReservationRepository) ListRecent(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("最近の予約取得に失敗: %w", err)
	}
	return toRows(rows), nil
}

func (r *ReservationRepository) FindOverlapping(ctx context.Context, aircraftID string, start, end time.Time, excludeID string) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE aircraft_id = $1 AND start_time < $2 AND end_time > $3
		AND status IN ('CONFIRMED', 'PENDING')
		AND ($4 = '' OR id::text <> $4)`
	if err := r.db.SelectContext(ctx, &rows, query, aircraftID, end, start, excludeID); err != nil {
		return nil, fmt.Errorf("重複予約の検索に失敗: %w", err)
	}
	return toRows(rows), nil
}

func (r *ReservationRepository) GetUnsettled(ctx context.Context, createdBefore time.Time, limit int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE payment_id IS NULL AND status = 'CONFIRMED' AND created_at < $1
		ORDER BY created_at ASC LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, createdBefore, limit); err != nil {
		return nil, fmt.Errorf("未精算予約の取得に失敗: %w", err)
	}
	return toRows(rows), nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	query := `UPDATE reservations SET aircraft_id = $1, start_time = $2, end_time = $3, reservation_date = $4,
		estimated_flight_hours = $5, purpose = $6, notes = $7, flight_category = $8, status = $9, updated_at = $10
		WHERE id = $11`
	result, err := r.db.ExecContext(ctx, query,
		res.AircraftID, res.StartTime, res.EndTime, res.ReservationDate,
		nullFloat(res.EstimatedFlightHours), nullString(res.Purpose), nullString(res.Notes),
		nullString(res.FlightCategory), string(res.Status), res.UpdatedAt, res.ID,
	)
	if err != nil {
		if pqCode(err) == pqExclusionViolation {
			return reservation.ErrTimeSlotConflict
		}
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗: %w", err)
	}
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) LinkPayment(ctx context.Context, id, paymentID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE reservations SET payment_id = $1, updated_at = NOW() WHERE id = $2`, paymentID, id)
	if err != nil {
		return fmt.Errorf("支払い紐付けに失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗: %w", err)
	}
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return reservation.ErrReservationNotFound
		}
		return fmt.Errorf("予約削除に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗: %w", err)
	}
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
