package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/transaction"
)

const paymentColumns = `id, user_id, amount, method, type, status, reference, created_at, refunded_at`

type paymentRow struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	Amount     float64        `db:"amount"`
	Method     string         `db:"method"`
	Type       string         `db:"type"`
	Status     string         `db:"status"`
	Reference  sql.NullString `db:"reference"`
	CreatedAt  time.Time      `db:"created_at"`
	RefundedAt sql.NullTime   `db:"refunded_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	p := &payment.Payment{
		ID:        r.ID,
		UserID:    r.UserID,
		Amount:    r.Amount,
		Method:    payment.Method(r.Method),
		Type:      payment.Type(r.Type),
		Status:    payment.Status(r.Status),
		Reference: r.Reference.String,
		CreatedAt: r.CreatedAt,
	}
	if r.RefundedAt.Valid {
		t := r.RefundedAt.Time
		p.RefundedAt = &t
	}
	return p
}

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO payments (user_id, amount, method, type, status, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err = sqlxTx.QueryRowxContext(ctx, query,
		p.UserID, p.Amount, string(p.Method), string(p.Type), string(p.Status), nullString(p.Reference), p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return payment.ErrReferenceExists
		}
		return fmt.Errorf("支払い作成に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, args ...any) (*payment.Payment, error) {
	var row paymentRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払い取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reference = $1`, reference)
}

func (r *PaymentRepository) FindCompletedWithdrawal(ctx context.Context, userID string, amountCents int64) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE user_id = $1 AND type = 'WITHDRAWAL' AND status = 'COMPLETED' AND reference IS NULL
			AND amount = ($2::bigint / 100.0)
		ORDER BY created_at ASC LIMIT 1`
	return r.getOne(ctx, query, userID, amountCents)
}

func (r *PaymentRepository) MarkRefunded(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	result, err := sqlxTx.ExecContext(ctx,
		`UPDATE payments SET status = $1, refunded_at = $2 WHERE id = $3 AND status = 'COMPLETED'`,
		string(p.Status), p.RefundedAt, p.ID)
	if err != nil {
		return fmt.Errorf("支払いの返金済み更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗: %w", err)
	}
	if rows == 0 {
		return payment.ErrAlreadyRefunded
	}
	return nil
}

func (r *PaymentRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		if isInvalidID(err) {
			return []*payment.Payment{}, nil
		}
		return nil, fmt.Errorf("支払い一覧取得に失敗: %w", err)
	}
	result := make([]*payment.Payment, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
