package event

import "time"

// Status はイベントの状態を表す
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusOpen      Status = "OPEN"
	StatusFull      Status = "FULL"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusRejected  Status = "REJECTED"
)

// Event はイベントエンティティを表す
// Capacity は残り座席数（総座席数ではない）
// capacity == 0 ⇔ status == FULL の不変条件は OPEN/FULL の間のみ維持される
type Event struct {
	ID         string
	HostID     string
	Title      string
	Location   string
	Date       time.Time
	Capacity   int
	JoiningFee float64
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewEvent は新しいイベントを作成する（承認待ち状態で開始）
func NewEvent(hostID, title, location string, date time.Time, capacity int, joiningFee float64) *Event {
	now := time.Now()
	return &Event{
		HostID:     hostID,
		Title:      title,
		Location:   location,
		Date:       date,
		Capacity:   capacity,
		JoiningFee: joiningFee,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.HostID == "" {
		return ErrHostIDRequired
	}
	if e.Title == "" {
		return ErrTitleRequired
	}
	if e.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if e.JoiningFee < 0 {
		return ErrInvalidJoiningFee
	}
	return nil
}

// IsJoinable は参加受付中かを返す
func (e *Event) IsJoinable(now time.Time) bool {
	return e.Status == StatusOpen && e.Date.After(now) && e.Capacity >= 1
}

// IsTerminal は終端状態（受付が再開されない状態）かを返す
func (e *Event) IsTerminal() bool {
	switch e.Status {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// CanComplete は完了遷移が可能かを返す
// OPEN または FULL からのみ、開催日時を過ぎた後に限る
func (e *Event) CanComplete(now time.Time) error {
	if e.Status != StatusOpen && e.Status != StatusFull {
		return ErrEventNotCompletable
	}
	if now.Before(e.Date) {
		return ErrEventNotStarted
	}
	return nil
}
