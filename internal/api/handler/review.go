package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/review"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

type ReviewHandler struct {
	service ReviewServiceInterface
	metrics *metrics.Metrics
}

func NewReviewHandler(s ReviewServiceInterface, m *metrics.Metrics) *ReviewHandler {
	return &ReviewHandler{service: s, metrics: m}
}

type SubmitReviewRequest struct {
	TransactionID string `json:"transaction_id" validate:"required" example:"tran_550e8400"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5" example:"5"`
	Comment       string `json:"comment" example:"とても良いイベントでした"`
}

type ReviewResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	EventID       string    `json:"event_id"`
	ClientID      string    `json:"client_id"`
	HostID        string    `json:"host_id"`
	Rating        int       `json:"rating" example:"5"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID: r.ID, TransactionID: r.TransactionID,
		EventID: r.EventID, ClientID: r.ClientID, HostID: r.HostID,
		Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt,
	}
}

// Submit godoc
// @Summary レビューを登録
// @Description 完了したイベントの支払い済み参加者のみ、イベントごとに1回登録できます
// @Tags reviews
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param request body SubmitReviewRequest true "レビュー情報"
// @Success 201 {object} ReviewResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "レビュー済み"
// @Failure 422 {object} api.ErrorResponse "イベント未完了または未払い"
// @Router /reviews [post]
func (h *ReviewHandler) Submit(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req SubmitReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	rv, err := h.service.SubmitReview(c.Request().Context(), actor, application.SubmitReviewInput{
		TransactionID: req.TransactionID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		h.countReview(reviewResultLabel(err))
		return err
	}
	h.countReview("success")
	return c.JSON(http.StatusCreated, toReviewResponse(rv))
}

// HasReviewed godoc
// @Summary レビュー済みかを確認
// @Tags reviews
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "イベントID"
// @Success 200 {object} map[string]bool
// @Router /events/{id}/reviewed [get]
func (h *ReviewHandler) HasReviewed(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	reviewed, err := h.service.HasReviewed(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"reviewed": reviewed})
}

// ListLatest godoc
// @Summary 最新のレビュー一覧
// @Tags reviews
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Success 200 {array} ReviewResponse
// @Router /reviews [get]
func (h *ReviewHandler) ListLatest(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	reviews, err := h.service.ListLatest(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	resp := make([]ReviewResponse, len(reviews))
	for i, rv := range reviews {
		resp[i] = toReviewResponse(rv)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) countReview(result string) {
	if h.metrics != nil {
		h.metrics.ReviewsTotal.WithLabelValues(result).Inc()
	}
}

func reviewResultLabel(err error) string {
	switch {
	case errors.Is(err, review.ErrAlreadyReviewed),
		errors.Is(err, review.ErrEventNotCompleted),
		errors.Is(err, review.ErrPaymentNotPaid),
		errors.Is(err, review.ErrNotReviewOwner):
		return "rejected"
	default:
		return "error"
	}
}
