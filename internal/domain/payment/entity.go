package payment

import "time"

// Status は決済の状態を表す
// PENDING のみ非終端。PAID / CANCELLED / REFUNDED は相互排他な終端状態で、
// 一度到達したら二度と遷移しない
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// IsTerminal は終端状態かを返す
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusRefunded
}

// Payment は決済エンティティを表す
// TransactionID はゲートウェイコールバックの冪等性キー
type Payment struct {
	ID            string
	TransactionID string
	ParticipantID *string
	EventID       string
	ClientID      string
	HostID        string
	Amount        float64
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment は新しい決済を作成する
func NewPayment(transactionID, participantID, eventID, clientID, hostID string, amount float64) *Payment {
	now := time.Now()
	return &Payment{
		TransactionID: transactionID,
		ParticipantID: &participantID,
		EventID:       eventID,
		ClientID:      clientID,
		HostID:        hostID,
		Amount:        amount,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate は決済の検証を行う
func (p *Payment) Validate() error {
	if p.TransactionID == "" {
		return ErrTransactionIDRequired
	}
	if p.EventID == "" {
		return ErrEventIDRequired
	}
	if p.ClientID == "" {
		return ErrClientIDRequired
	}
	if p.HostID == "" {
		return ErrHostIDRequired
	}
	if p.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsPending は未確定かを返す
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}
