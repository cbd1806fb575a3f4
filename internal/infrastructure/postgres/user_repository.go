package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
)

type userRow struct {
	ID               string  `db:"id"`
	Email            string  `db:"email"`
	FirstName        string  `db:"first_name"`
	LastName         string  `db:"last_name"`
	AccountBalance   float64 `db:"user_account_balance"`
	TotalFlightHours float64 `db:"total_flight_hours"`
}

type licenseRow struct {
	ID          string `db:"id"`
	LicenseType string `db:"license_type"`
}

type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string, withLicenses bool) (*user.User, error) {
	var row userRow
	query := `SELECT id, email, first_name, last_name, user_account_balance, total_flight_hours FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}

	u := &user.User{
		ID:               row.ID,
		Email:            row.Email,
		FirstName:        row.FirstName,
		LastName:         row.LastName,
		AccountBalance:   row.AccountBalance,
		TotalFlightHours: row.TotalFlightHours,
	}
	if !withLicenses {
		return u, nil
	}

	var licenses []licenseRow
	if err := r.db.SelectContext(ctx, &licenses, `SELECT id, license_type FROM licenses WHERE user_id = $1 ORDER BY license_type`, id); err != nil {
		return nil, fmt.Errorf("ライセンス取得に失敗: %w", err)
	}
	u.Licenses = make([]user.License, len(licenses))
	for i, l := range licenses {
		u.Licenses[i] = user.License{ID: l.ID, LicenseType: l.LicenseType}
	}
	return u, nil
}

func (r *UserRepository) AdjustBalance(ctx context.Context, tx transaction.Tx, id string, deltaCents int64) (float64, error) {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return 0, err
	}

	var balance float64
	query := `UPDATE users SET user_account_balance = user_account_balance + ($1::bigint / 100.0), updated_at = NOW()
		WHERE id = $2 AND ($1::bigint >= 0 OR user_account_balance + ($1::bigint / 100.0) >= 0)
		RETURNING user_account_balance`
	err = sqlxTx.QueryRowxContext(ctx, query, deltaCents, id).Scan(&balance)
	switch {
	case err == nil:
		return balance, nil
	case isInvalidID(err):
		return 0, user.ErrUserNotFound
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("残高更新に失敗: %w", err)
	}

	var exists bool
	if err := sqlxTx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return 0, fmt.Errorf("ユーザー確認に失敗: %w", err)
	}
	if exists {
		return 0, user.ErrInsufficientBalance
	}
	return 0, user.ErrUserNotFound
}

func (r *UserRepository) AdjustFlightHours(ctx context.Context, id string, delta float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET total_flight_hours = total_flight_hours + $1, updated_at = NOW() WHERE id = $2`, delta, id)
	if err != nil {
		if isInvalidID(err) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("飛行時間更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗: %w", err)
	}
	if rows == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

var _ user.Repository = (*UserRepository)(nil)
