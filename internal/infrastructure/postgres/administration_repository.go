package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
)

type administrationRow struct {
	ID            string         `db:"id"`
	PilotLicenses pq.StringArray `db:"pilot_licenses"`
}

type AdministrationRepository struct{ db *sqlx.DB }

func NewAdministrationRepository(db *sqlx.DB) *AdministrationRepository {
	return &AdministrationRepository{db: db}
}

func (r *AdministrationRepository) FindAll(ctx context.Context) ([]*administration.Settings, error) {
	var rows []administrationRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, pilot_licenses FROM administration ORDER BY created_at ASC`); err != nil {
		return nil, fmt.Errorf("管理設定の取得に失敗: %w", err)
	}
	result := make([]*administration.Settings, len(rows))
	for i, row := range rows {
		result[i] = &administration.Settings{ID: row.ID, PilotLicenses: []string(row.PilotLicenses)}
	}
	return result, nil
}

func (r *AdministrationRepository) Save(ctx context.Context, s *administration.Settings) error {
	licenses := pq.Array(s.PilotLicenses)
	if s.ID == "" {
		query := `INSERT INTO administration (pilot_licenses) VALUES ($1) RETURNING id`
		if err := r.db.QueryRowContext(ctx, query, licenses).Scan(&s.ID); err != nil {
			return fmt.Errorf("管理設定の作成に失敗: %w", err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx, `UPDATE administration SET pilot_licenses = $1, updated_at = NOW() WHERE id = $2`, licenses, s.ID)
	if err != nil {
		return fmt.Errorf("管理設定の更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗: %w", err)
	}
	if rows == 0 {
		return administration.ErrSettingsNotFound
	}
	return nil
}

var _ administration.Repository = (*AdministrationRepository)(nil)
