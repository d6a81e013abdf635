package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

type PaymentHandler struct {
	service SettlementServiceInterface
	metrics *metrics.Metrics
}

func NewPaymentHandler(s SettlementServiceInterface, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{service: s, metrics: m}
}

// transactionIDKeys はゲートウェイとリダイレクトURLで表記が揺れるキーの候補
// 歴代のコールバック実装で使われてきた綴りをすべて受け付ける
var transactionIDKeys = []string{"transactionId", "tran_id", "txnId", "transaction_id"}

// extractTransactionID はクエリパラメータとフォームからトランザクションIDを探す
func extractTransactionID(c echo.Context) string {
	for _, key := range transactionIDKeys {
		if v := c.QueryParam(key); v != "" {
			return v
		}
	}
	for _, key := range transactionIDKeys {
		if v := c.FormValue(key); v != "" {
			return v
		}
	}
	return ""
}

type PaymentResponse struct {
	TransactionID string    `json:"transaction_id" example:"tran_550e8400"`
	EventID       string    `json:"event_id"`
	ClientID      string    `json:"client_id"`
	HostID        string    `json:"host_id"`
	Amount        float64   `json:"amount" example:"500"`
	Status        string    `json:"status" example:"PAID"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		TransactionID: p.TransactionID, EventID: p.EventID,
		ClientID: p.ClientID, HostID: p.HostID,
		Amount: p.Amount, Status: string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}

// Success godoc
// @Summary 決済成功コールバック
// @Description ゲートウェイからの成功通知を受けて決済を PAID に確定します。同一トランザクションIDへの再送は冪等です
// @Tags payments
// @Produce json
// @Param transactionId query string false "トランザクションID（tran_id / txnId / transaction_id も可）"
// @Success 200 {object} map[string]string
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "別の終端状態で確定済み"
// @Router /payments/success [post]
func (h *PaymentHandler) Success(c echo.Context) error {
	return h.settle(c, payment.StatusPaid)
}

// Fail godoc
// @Summary 決済失敗コールバック
// @Description 失敗通知を受けて決済を CANCELLED に確定し、座席を解放します
// @Tags payments
// @Produce json
// @Param transactionId query string false "トランザクションID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} api.ErrorResponse
// @Router /payments/fail [post]
func (h *PaymentHandler) Fail(c echo.Context) error {
	return h.settle(c, payment.StatusCancelled)
}

// Cancel godoc
// @Summary 決済キャンセルコールバック
// @Description 利用者のキャンセルを受けて決済を CANCELLED に確定し、座席を解放します（失敗と同じ処理）
// @Tags payments
// @Produce json
// @Param transactionId query string false "トランザクションID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} api.ErrorResponse
// @Router /payments/cancel [post]
func (h *PaymentHandler) Cancel(c echo.Context) error {
	return h.settle(c, payment.StatusCancelled)
}

// Refund godoc
// @Summary 決済を返金済みにする
// @Description 管理者が PENDING の決済を REFUNDED に確定します
// @Tags payments
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param transaction_id path string true "トランザクションID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /payments/{transaction_id}/refund [post]
func (h *PaymentHandler) Refund(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return echo.NewHTTPError(http.StatusForbidden, "管理者のみ返金できます")
	}

	transactionID := c.Param("transaction_id")
	if err := h.service.Settle(c.Request().Context(), transactionID, payment.StatusRefunded); err != nil {
		h.countSettlement(payment.StatusRefunded, err)
		return err
	}
	h.countSettlement(payment.StatusRefunded, nil)
	return c.JSON(http.StatusOK, map[string]string{
		"transaction_id": transactionID,
		"status":         string(payment.StatusRefunded),
	})
}

func (h *PaymentHandler) settle(c echo.Context, outcome payment.Status) error {
	transactionID := extractTransactionID(c)
	if transactionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "トランザクションIDが必要です")
	}

	if err := h.service.Settle(c.Request().Context(), transactionID, outcome); err != nil {
		h.countSettlement(outcome, err)
		return err
	}
	h.countSettlement(outcome, nil)
	return c.JSON(http.StatusOK, map[string]string{
		"transaction_id": transactionID,
		"status":         string(outcome),
	})
}

// GetByTransactionID godoc
// @Summary 決済を取得
// @Tags payments
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param transaction_id path string true "トランザクションID"
// @Success 200 {object} PaymentResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /payments/{transaction_id} [get]
func (h *PaymentHandler) GetByTransactionID(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	p, err := h.service.GetByTransactionID(c.Request().Context(), actor, c.Param("transaction_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

// ListMine godoc
// @Summary 自分の決済履歴
// @Description クライアントは自分の支払い、ホストは自分のイベントへの支払いを取得します
// @Tags payments
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PaymentResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /payments [get]
func (h *PaymentHandler) ListMine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var payments []*payment.Payment
	switch {
	case actor.Role == profile.RoleHost:
		payments, err = h.service.ListByHost(c.Request().Context(), actor, limit, offset)
	default:
		payments, err = h.service.ListByClient(c.Request().Context(), actor, limit, offset)
	}
	if err != nil {
		return err
	}

	resp := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) countSettlement(outcome payment.Status, err error) {
	if h.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		if errors.Is(err, payment.ErrAlreadyTerminal) {
			result = "conflict"
		} else {
			result = "error"
		}
	}
	h.metrics.SettlementsTotal.WithLabelValues(string(outcome), result).Inc()
}
