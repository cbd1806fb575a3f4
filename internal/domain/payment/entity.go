package payment

import "time"

// Type は口座からの出金か入金かを表す
type Type string

const (
	TypeWithdrawal Type = "WITHDRAWAL"
	TypeDeposit    Type = "DEPOSIT"
)

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusRefunded  Status = "REFUNDED"
)

type Method string

const (
	MethodAccountBalance Method = "ACCOUNT_BALANCE"
	MethodCard           Method = "CARD"
	MethodCash           Method = "CASH"
)

// Payment はユーザー残高に影響する台帳エントリを表す
type Payment struct {
	ID     string
	UserID string
	Amount float64
	Method Method
	Type   Type
	Status Status
	// Reference は支払いの冪等性キー（予約の引き落としでは予約ID）
	Reference  string
	CreatedAt  time.Time
	RefundedAt *time.Time
}

func NewPayment(userID string, amount float64, method Method, typ Type, reference string) *Payment {
	return &Payment{
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Type:      typ,
		Status:    StatusCompleted,
		Reference: reference,
		CreatedAt: time.Now(),
	}
}

func (p *Payment) Validate() error {
	if p.UserID == "" {
		return ErrUserIDRequired
	}
	if p.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarkRefunded は完了済みの引き落としを返金済みにする
func (p *Payment) MarkRefunded() error {
	if p.Status == StatusRefunded {
		return ErrAlreadyRefunded
	}
	if p.Type != TypeWithdrawal {
		return ErrNotRefundable
	}
	now := time.Now()
	p.Status = StatusRefunded
	p.RefundedAt = &now
	return nil
}
