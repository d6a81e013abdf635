package review

import "time"

// Review はレビューエンティティを表す
// (EventID, ClientID) の組に対して高々1件。HostID は評価集計のための非正規化
type Review struct {
	ID            string
	TransactionID string
	EventID       string
	ClientID      string
	HostID        string
	Rating        int
	Comment       string
	CreatedAt     time.Time
}

// NewReview は新しいレビューを作成する
func NewReview(transactionID, eventID, clientID, hostID string, rating int, comment string) *Review {
	return &Review{
		TransactionID: transactionID,
		EventID:       eventID,
		ClientID:      clientID,
		HostID:        hostID,
		Rating:        rating,
		Comment:       comment,
		CreatedAt:     time.Now(),
	}
}

// Validate はレビューの検証を行う
func (r *Review) Validate() error {
	if r.TransactionID == "" {
		return ErrTransactionIDRequired
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
