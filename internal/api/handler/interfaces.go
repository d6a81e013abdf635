package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/review"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, actor application.Actor, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*event.Event, error)
	RemainingCapacity(ctx context.Context, eventID string) (int, error)
	ApproveEvent(ctx context.Context, actor application.Actor, eventID string) error
	RejectEvent(ctx context.Context, actor application.Actor, eventID string) error
	CompleteEvent(ctx context.Context, actor application.Actor, eventID string) error
	ListParticipants(ctx context.Context, actor application.Actor, eventID string) ([]*participant.Participant, error)
}

// ParticipationServiceInterface は参加サービスのインターフェース
type ParticipationServiceInterface interface {
	JoinEvent(ctx context.Context, actor application.Actor, eventID string) (*application.JoinResult, error)
	LeaveEvent(ctx context.Context, actor application.Actor, eventID string) error
	GetParticipation(ctx context.Context, actor application.Actor, eventID string) (*participant.Participant, error)
}

// SettlementServiceInterface は精算サービスのインターフェース
type SettlementServiceInterface interface {
	Settle(ctx context.Context, transactionID string, outcome payment.Status) error
	GetByTransactionID(ctx context.Context, actor application.Actor, transactionID string) (*payment.Payment, error)
	ListByClient(ctx context.Context, actor application.Actor, limit, offset int) ([]*payment.Payment, error)
	ListByHost(ctx context.Context, actor application.Actor, limit, offset int) ([]*payment.Payment, error)
	SweepStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// ReviewServiceInterface はレビューサービスのインターフェース
type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, actor application.Actor, input application.SubmitReviewInput) (*review.Review, error)
	HasReviewed(ctx context.Context, actor application.Actor, eventID string) (bool, error)
	ListLatest(ctx context.Context, limit int) ([]*review.Review, error)
}
