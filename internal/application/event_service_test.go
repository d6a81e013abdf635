package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
)

type eventDeps struct {
	eventRepo       *MockEventRepository
	participantRepo *MockParticipantRepository
	hostRepo        *MockHostRepository
	service         *EventService
}

func newEventDeps() *eventDeps {
	er := new(MockEventRepository)
	pr := new(MockParticipantRepository)
	hr := new(MockHostRepository)

	service := NewEventService(er, pr, hr, nil)

	return &eventDeps{
		eventRepo:       er,
		participantRepo: pr,
		hostRepo:        hr,
		service:         service,
	}
}

func activeHost(id string) *profile.Host {
	return &profile.Host{
		Identity: profile.Identity{
			ID:     id,
			Name:   "主催者",
			Email:  "host@example.com",
			Status: profile.AccountActive,
		},
	}
}

func hostActor(id string) Actor {
	return Actor{ID: id, Role: profile.RoleHost}
}

func adminActor(id string) Actor {
	return Actor{ID: id, Role: profile.RoleAdmin}
}

func TestEventService_CreateEvent_StartsPending(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	deps.hostRepo.On("GetByID", ctx, "host-1").Return(activeHost("host-1"), nil)
	deps.eventRepo.On("Create", ctx, mock.AnythingOfType("*event.Event")).Return(nil)

	ev, err := deps.service.CreateEvent(ctx, hostActor("host-1"), CreateEventInput{
		Title:      "技術勉強会",
		Location:   "Dhaka",
		Date:       time.Now().Add(48 * time.Hour),
		Capacity:   30,
		JoiningFee: 500,
	})

	require.NoError(t, err)
	assert.Equal(t, event.StatusPending, ev.Status)
	assert.Equal(t, "host-1", ev.HostID)
	assert.Equal(t, 30, ev.Capacity)
}

func TestEventService_CreateEvent_PastDate(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	deps.hostRepo.On("GetByID", ctx, "host-1").Return(activeHost("host-1"), nil)

	_, err := deps.service.CreateEvent(ctx, hostActor("host-1"), CreateEventInput{
		Title:    "過去のイベント",
		Date:     time.Now().Add(-1 * time.Hour),
		Capacity: 10,
	})

	assert.ErrorIs(t, err, event.ErrEventDatePassed)
	deps.eventRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestEventService_CreateEvent_InvalidCapacity(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	deps.hostRepo.On("GetByID", ctx, "host-1").Return(activeHost("host-1"), nil)

	_, err := deps.service.CreateEvent(ctx, hostActor("host-1"), CreateEventInput{
		Title:    "定員なし",
		Date:     time.Now().Add(48 * time.Hour),
		Capacity: 0,
	})

	assert.ErrorIs(t, err, event.ErrInvalidCapacity)
}

func TestEventService_CreateEvent_NotHost(t *testing.T) {
	deps := newEventDeps()

	_, err := deps.service.CreateEvent(context.Background(), clientActor("client-1"), CreateEventInput{})

	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestEventService_ApproveEvent_Success(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	pending := openEvent("event-1", "host-1", 5)
	pending.Status = event.StatusPending

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(pending, nil)
	deps.eventRepo.On("UpdateStatusIf", ctx, "event-1", event.StatusOpen,
		[]event.Status{event.StatusPending}).Return(true, nil)

	err := deps.service.ApproveEvent(ctx, adminActor("admin-1"), "event-1")

	require.NoError(t, err)
	deps.eventRepo.AssertExpectations(t)
}

func TestEventService_ApproveEvent_NotAdmin(t *testing.T) {
	deps := newEventDeps()

	err := deps.service.ApproveEvent(context.Background(), hostActor("host-1"), "event-1")

	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestEventService_ApproveEvent_NotPending(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(openEvent("event-1", "host-1", 5), nil)
	deps.eventRepo.On("UpdateStatusIf", ctx, "event-1", event.StatusOpen,
		[]event.Status{event.StatusPending}).Return(false, nil)

	err := deps.service.ApproveEvent(ctx, adminActor("admin-1"), "event-1")

	assert.ErrorIs(t, err, event.ErrEventNotApprovable)
}

func TestEventService_RejectEvent_Success(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	pending := openEvent("event-1", "host-1", 5)
	pending.Status = event.StatusPending

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(pending, nil)
	deps.eventRepo.On("UpdateStatusIf", ctx, "event-1", event.StatusRejected,
		[]event.Status{event.StatusPending}).Return(true, nil)

	err := deps.service.RejectEvent(ctx, adminActor("admin-1"), "event-1")

	require.NoError(t, err)
	deps.eventRepo.AssertExpectations(t)
}

func TestEventService_CompleteEvent_ByHost(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	ended := openEvent("event-1", "host-1", 5)
	ended.Date = time.Now().Add(-1 * time.Hour)

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(ended, nil)
	deps.eventRepo.On("UpdateStatusIf", ctx, "event-1", event.StatusCompleted,
		[]event.Status{event.StatusOpen, event.StatusFull}).Return(true, nil)

	err := deps.service.CompleteEvent(ctx, hostActor("host-1"), "event-1")

	require.NoError(t, err)
	deps.eventRepo.AssertExpectations(t)
}

func TestEventService_CompleteEvent_FullEventAfterDate(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	ended := openEvent("event-1", "host-1", 0)
	ended.Status = event.StatusFull
	ended.Date = time.Now().Add(-1 * time.Hour)

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(ended, nil)
	deps.eventRepo.On("UpdateStatusIf", ctx, "event-1", event.StatusCompleted,
		[]event.Status{event.StatusOpen, event.StatusFull}).Return(true, nil)

	err := deps.service.CompleteEvent(ctx, adminActor("admin-1"), "event-1")

	require.NoError(t, err)
}

func TestEventService_CompleteEvent_BeforeDate(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(openEvent("event-1", "host-1", 5), nil)

	err := deps.service.CompleteEvent(ctx, hostActor("host-1"), "event-1")

	assert.ErrorIs(t, err, event.ErrEventNotStarted)
}

func TestEventService_CompleteEvent_OtherHost(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	ended := openEvent("event-1", "host-1", 5)
	ended.Date = time.Now().Add(-1 * time.Hour)

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(ended, nil)

	err := deps.service.CompleteEvent(ctx, hostActor("host-2"), "event-1")

	assert.ErrorIs(t, err, ErrNotAuthorized)
}

// 読込時は完了可能でも、並行する完了操作が先に遷移させたケース
func TestEventService_CompleteEvent_LostRace(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	ended := openEvent("event-1", "host-1", 5)
	ended.Date = time.Now().Add(-1 * time.Hour)

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(ended, nil)
	deps.eventRepo.On("UpdateStatusIf", ctx, "event-1", event.StatusCompleted,
		[]event.Status{event.StatusOpen, event.StatusFull}).Return(false, nil)

	err := deps.service.CompleteEvent(ctx, hostActor("host-1"), "event-1")

	assert.ErrorIs(t, err, event.ErrEventNotCompletable)
}

func TestEventService_CompleteEvent_AlreadyCompleted(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	done := openEvent("event-1", "host-1", 5)
	done.Status = event.StatusCompleted
	done.Date = time.Now().Add(-1 * time.Hour)

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(done, nil)

	err := deps.service.CompleteEvent(ctx, hostActor("host-1"), "event-1")

	assert.ErrorIs(t, err, event.ErrEventNotCompletable)
}

func TestEventService_RemainingCapacity_WithoutCache(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(openEvent("event-1", "host-1", 7), nil)

	remaining, err := deps.service.RemainingCapacity(ctx, "event-1")

	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
}

func TestEventService_ListParticipants_Authorization(t *testing.T) {
	deps := newEventDeps()
	ctx := context.Background()

	deps.eventRepo.On("GetByID", ctx, "event-1").Return(openEvent("event-1", "host-1", 5), nil)
	deps.participantRepo.On("ListActiveByEventID", ctx, "event-1").
		Return([]*participant.Participant{{ID: "participant-1"}}, nil)

	// 主催ホストは取得できる
	list, err := deps.service.ListParticipants(ctx, hostActor("host-1"), "event-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// 別のホストは取得できない
	_, err = deps.service.ListParticipants(ctx, hostActor("host-2"), "event-1")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// クライアントも取得できない
	_, err = deps.service.ListParticipants(ctx, clientActor("client-1"), "event-1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
