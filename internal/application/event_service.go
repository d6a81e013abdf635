package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	rediscache "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

const capacityCacheTTL = 30 * time.Second

// EventService はイベントのライフサイクル（作成・承認・完了）と参照を扱う
type EventService struct {
	eventRepo       event.Repository
	participantRepo participant.Repository
	hostRepo        profile.HostRepository
	capacityCache   *rediscache.CapacityCache
}

func NewEventService(
	er event.Repository,
	pr participant.Repository,
	hr profile.HostRepository,
	cache *rediscache.CapacityCache,
) *EventService {
	return &EventService{
		eventRepo:       er,
		participantRepo: pr,
		hostRepo:        hr,
		capacityCache:   cache,
	}
}

// CreateEventInput はイベント作成の入力
type CreateEventInput struct {
	Title      string
	Location   string
	Date       time.Time
	Capacity   int
	JoiningFee float64
}

// CreateEvent は新しいイベントを承認待ち状態で作成する
func (s *EventService) CreateEvent(ctx context.Context, actor Actor, input CreateEventInput) (*event.Event, error) {
	if actor.Role != profile.RoleHost {
		return nil, ErrNotAuthorized
	}

	host, err := s.hostRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := host.ActError(); err != nil {
		return nil, err
	}

	ev := event.NewEvent(actor.ID, input.Title, input.Location, input.Date, input.Capacity, input.JoiningFee)
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if !ev.Date.After(time.Now()) {
		return nil, event.ErrEventDatePassed
	}

	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// ApproveEvent は承認待ちのイベントを受付中にする（管理者のみ）
func (s *EventService) ApproveEvent(ctx context.Context, actor Actor, eventID string) error {
	return s.moderate(ctx, actor, eventID, event.StatusOpen)
}

// RejectEvent は承認待ちのイベントを却下する（管理者のみ）
func (s *EventService) RejectEvent(ctx context.Context, actor Actor, eventID string) error {
	return s.moderate(ctx, actor, eventID, event.StatusRejected)
}

func (s *EventService) moderate(ctx context.Context, actor Actor, eventID string, to event.Status) error {
	if !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}
	// 条件付き更新で PENDING からの遷移のみ許可する（並行する承認・却下に対して安全）
	changed, err := s.eventRepo.UpdateStatusIf(ctx, eventID, to, event.StatusPending)
	if err != nil {
		return err
	}
	if !changed {
		return event.ErrEventNotApprovable
	}
	return nil
}

// CompleteEvent はイベントを完了状態にする
// 主催ホスト本人または管理者のみ、開催日時を過ぎた後に限る
func (s *EventService) CompleteEvent(ctx context.Context, actor Actor, eventID string) error {
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !(actor.Role == profile.RoleHost && actor.ID == ev.HostID) {
		return ErrNotAuthorized
	}
	if err := ev.CanComplete(time.Now()); err != nil {
		return err
	}
	changed, err := s.eventRepo.UpdateStatusIf(ctx, eventID, event.StatusCompleted,
		event.StatusOpen, event.StatusFull)
	if err != nil {
		return err
	}
	if !changed {
		return event.ErrEventNotCompletable
	}
	return nil
}

// GetEvent はイベントを取得する
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

// ListOpen は参加受付中のイベント一覧を取得する
func (s *EventService) ListOpen(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.ListOpen(ctx, limit, offset)
}

// RemainingCapacity はイベントの残り座席数を返す（表示用）
// キャッシュを優先し、ミス時はDBの値を短いTTLでキャッシュする
func (s *EventService) RemainingCapacity(ctx context.Context, eventID string) (int, error) {
	if s.capacityCache != nil {
		if remaining, err := s.capacityCache.GetRemaining(ctx, eventID); err == nil {
			return remaining, nil
		} else if !errors.Is(err, rediscache.ErrCacheMiss) {
			logger.Warn("座席数キャッシュの取得に失敗", zap.String("event_id", eventID), zap.Error(err))
		}
	}

	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if s.capacityCache != nil {
		if err := s.capacityCache.SetRemaining(ctx, eventID, ev.Capacity, capacityCacheTTL); err != nil {
			logger.Warn("座席数キャッシュの保存に失敗", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return ev.Capacity, nil
}

// ListParticipants はイベントの参加者一覧を返す（主催ホストまたは管理者のみ）
func (s *EventService) ListParticipants(ctx context.Context, actor Actor, eventID string) ([]*participant.Participant, error) {
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == profile.RoleHost && actor.ID == ev.HostID) {
		return nil, ErrNotAuthorized
	}
	return s.participantRepo.ListActiveByEventID(ctx, eventID)
}
