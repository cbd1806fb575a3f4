package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
)

type aircraftRow struct {
	ID                 string         `db:"id"`
	RegistrationNumber string         `db:"registration_number"`
	Model              sql.NullString `db:"model"`
	HourlyCost         float64        `db:"hourly_cost"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (r *aircraftRow) toEntity() *aircraft.Aircraft {
	return &aircraft.Aircraft{
		ID:                 r.ID,
		RegistrationNumber: r.RegistrationNumber,
		Model:              r.Model.String,
		HourlyCost:         r.HourlyCost,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type AircraftRepository struct{ db *sqlx.DB }

func NewAircraftRepository(db *sqlx.DB) *AircraftRepository {
	return &AircraftRepository{db: db}
}

func (r *AircraftRepository) Create(ctx context.Context, a *aircraft.Aircraft) error {
	query := `INSERT INTO aircraft (registration_number, model, hourly_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, a.RegistrationNumber, nullString(a.Model), a.HourlyCost, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return aircraft.ErrRegistrationAlreadyTaken
		}
		return fmt.Errorf("機体作成に失敗: %w", err)
	}
	return nil
}

func (r *AircraftRepository) GetByID(ctx context.Context, id string) (*aircraft.Aircraft, error) {
	var row aircraftRow
	query := `SELECT id, registration_number, model, hourly_cost, created_at, updated_at FROM aircraft WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, aircraft.ErrAircraftNotFound
		}
		return nil, fmt.Errorf("機体取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *AircraftRepository) List(ctx context.Context, limit, offset int) ([]*aircraft.Aircraft, error) {
	var rows []aircraftRow
	query := `SELECT id, registration_number, model, hourly_cost, created_at, updated_at
		FROM aircraft ORDER BY registration_number ASC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("機体一覧取得に失敗: %w", err)
	}
	result := make([]*aircraft.Aircraft, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *AircraftRepository) Update(ctx context.Context, a *aircraft.Aircraft) error {
	query := `UPDATE aircraft SET registration_number = $1, model = $2, hourly_cost = $3, updated_at = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, a.RegistrationNumber, nullString(a.Model), a.HourlyCost, a.UpdatedAt, a.ID)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return aircraft.ErrRegistrationAlreadyTaken
		}
		return fmt.Errorf("機体更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗: %w", err)
	}
	if rows == 0 {
		return aircraft.ErrAircraftNotFound
	}
	return nil
}

var _ aircraft.Repository = (*AircraftRepository)(nil)
