package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

type ParticipationHandler struct {
	service ParticipationServiceInterface
	metrics *metrics.Metrics
}

func NewParticipationHandler(s ParticipationServiceInterface, m *metrics.Metrics) *ParticipationHandler {
	return &ParticipationHandler{service: s, metrics: m}
}

type JoinResponse struct {
	ParticipantID string `json:"participant_id"`
	TransactionID string `json:"transaction_id" example:"tran_550e8400"`
	Status        string `json:"status" example:"PENDING"`
	CheckoutURL   string `json:"checkout_url"`
}

// Join godoc
// @Summary イベントに参加を申し込む
// @Description 座席を確保し、決済ページURLを返します。決済が確定するまで参加は PENDING です
// @Tags participation
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 201 {object} JoinResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "満席または重複参加"
// @Failure 502 {object} api.ErrorResponse "ゲートウェイ接続エラー"
// @Router /events/{id}/join [post]
func (h *ParticipationHandler) Join(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	result, err := h.service.JoinEvent(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		h.countJoin(joinResultLabel(err))
		return err
	}
	h.countJoin("success")
	return c.JSON(http.StatusCreated, JoinResponse{
		ParticipantID: result.Participant.ID,
		TransactionID: result.TransactionID,
		Status:        string(result.Participant.Status),
		CheckoutURL:   result.CheckoutURL,
	})
}

// Leave godoc
// @Summary イベントから離脱する
// @Description 参加を取り消し、座席を解放します
// @Tags participation
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "既に離脱済み"
// @Router /events/{id}/leave [post]
func (h *ParticipationHandler) Leave(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.LeaveEvent(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "LEFT"})
}

// Get godoc
// @Summary 自分の参加状況を取得
// @Tags participation
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 200 {object} ParticipantResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/participation [get]
func (h *ParticipationHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	p, err := h.service.GetParticipation(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParticipantResponse(p))
}

func (h *ParticipationHandler) countJoin(result string) {
	if h.metrics != nil {
		h.metrics.JoinAttemptsTotal.WithLabelValues(result).Inc()
	}
}

func joinResultLabel(err error) string {
	switch {
	case errors.Is(err, event.ErrNoSeatsAvailable):
		return "no_seats"
	case errors.Is(err, participant.ErrAlreadyJoined):
		return "duplicate"
	case errors.Is(err, event.ErrEventNotOpen), errors.Is(err, event.ErrEventDatePassed):
		return "not_joinable"
	default:
		return "error"
	}
}
