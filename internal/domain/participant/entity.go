package participant

import "time"

// Status は参加者の状態を表す
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusLeft      Status = "LEFT"
)

// Participant はイベント参加エンティティを表す
// TransactionID は Payment と1対1で対応する
// LEFT は終端状態であり、再参加は新しい行として作成される
type Participant struct {
	ID            string
	EventID       string
	ClientID      string
	Status        Status
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewParticipant は新しい参加者を作成する
func NewParticipant(eventID, clientID, transactionID string) *Participant {
	now := time.Now()
	return &Participant{
		EventID:       eventID,
		ClientID:      clientID,
		Status:        StatusPending,
		TransactionID: transactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate は参加者の検証を行う
func (p *Participant) Validate() error {
	if p.EventID == "" {
		return ErrEventIDRequired
	}
	if p.ClientID == "" {
		return ErrClientIDRequired
	}
	if p.TransactionID == "" {
		return ErrTransactionIDRequired
	}
	return nil
}

// IsLeft は離脱済みかを返す
func (p *Participant) IsLeft() bool {
	return p.Status == StatusLeft
}

// Confirm は参加を確定する（決済完了時のみ呼ばれる）
// 既に LEFT の参加者を復活させることはない
func (p *Participant) Confirm() error {
	if p.Status == StatusLeft {
		return ErrParticipantAlreadyLeft
	}
	p.Status = StatusConfirmed
	p.UpdatedAt = time.Now()
	return nil
}

// Leave は参加を離脱状態にする
func (p *Participant) Leave() error {
	if p.Status == StatusLeft {
		return ErrParticipantAlreadyLeft
	}
	p.Status = StatusLeft
	p.UpdatedAt = time.Now()
	return nil
}
