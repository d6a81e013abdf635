package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
)

type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	Title      string    `json:"title" validate:"required" example:"技術勉強会"`
	Location   string    `json:"location" example:"Dhaka"`
	Date       time.Time `json:"date" validate:"required"`
	Capacity   int       `json:"capacity" validate:"required,min=1" example:"30"`
	JoiningFee float64   `json:"joining_fee" validate:"min=0" example:"500"`
}

type EventResponse struct {
	ID         string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	HostID     string    `json:"host_id" example:"host-123"`
	Title      string    `json:"title" example:"技術勉強会"`
	Location   string    `json:"location,omitempty" example:"Dhaka"`
	Date       time.Time `json:"date"`
	Capacity   int       `json:"capacity" example:"30"`
	JoiningFee float64   `json:"joining_fee" example:"500"`
	Status     string    `json:"status" example:"OPEN"`
	CreatedAt  time.Time `json:"created_at"`
}

func toEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID: e.ID, HostID: e.HostID, Title: e.Title,
		Location: e.Location, Date: e.Date,
		Capacity: e.Capacity, JoiningFee: e.JoiningFee,
		Status: string(e.Status), CreatedAt: e.CreatedAt,
	}
}

type ParticipantResponse struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	ClientID      string    `json:"client_id"`
	Status        string    `json:"status" example:"CONFIRMED"`
	TransactionID string    `json:"transaction_id" example:"tran_550e8400"`
	CreatedAt     time.Time `json:"created_at"`
}

func toParticipantResponse(p *participant.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID: p.ID, EventID: p.EventID, ClientID: p.ClientID,
		Status: string(p.Status), TransactionID: p.TransactionID,
		CreatedAt: p.CreatedAt,
	}
}

// Create godoc
// @Summary イベントを作成
// @Description ホストが新しいイベントを作成します（承認待ち状態で開始）
// @Tags events
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ev, err := h.service.CreateEvent(c.Request().Context(), actor, application.CreateEventInput{
		Title: req.Title, Location: req.Location, Date: req.Date,
		Capacity: req.Capacity, JoiningFee: req.JoiningFee,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(ev))
}

// GetByID godoc
// @Summary イベントを取得
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	ev, err := h.service.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(ev))
}

// ListOpen godoc
// @Summary 参加受付中のイベント一覧
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) ListOpen(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	events, err := h.service.ListOpen(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]EventResponse, len(events))
	for i, ev := range events {
		resp[i] = toEventResponse(ev)
	}
	return c.JSON(http.StatusOK, resp)
}

// RemainingCapacity godoc
// @Summary 残り座席数を取得
// @Description 表示用の残り座席数を返します（キャッシュされるため若干遅延することがあります）
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/capacity [get]
func (h *EventHandler) RemainingCapacity(c echo.Context) error {
	remaining, err := h.service.RemainingCapacity(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"remaining": remaining})
}

// Approve godoc
// @Summary イベントを承認
// @Description 管理者が承認待ちのイベントを受付中にします
// @Tags events
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /events/{id}/approve [post]
func (h *EventHandler) Approve(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.ApproveEvent(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": string(event.StatusOpen)})
}

// Reject godoc
// @Summary イベントを却下
// @Tags events
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /events/{id}/reject [post]
func (h *EventHandler) Reject(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.RejectEvent(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": string(event.StatusRejected)})
}

// Complete godoc
// @Summary イベントを完了
// @Description 開催日時を過ぎたイベントを完了状態にします（主催ホストまたは管理者）
// @Tags events
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /events/{id}/complete [post]
func (h *EventHandler) Complete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.CompleteEvent(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": string(event.StatusCompleted)})
}

// ListParticipants godoc
// @Summary イベントの参加者一覧
// @Description 主催ホストまたは管理者のみ（LEFT以外の参加者）
// @Tags events
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 200 {array} ParticipantResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /events/{id}/participants [get]
func (h *EventHandler) ListParticipants(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	participants, err := h.service.ListParticipants(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	resp := make([]ParticipantResponse, len(participants))
	for i, p := range participants {
		resp[i] = toParticipantResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}
