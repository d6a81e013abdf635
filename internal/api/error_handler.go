package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/domain/review"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/sslcommerz"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// domainStatus はドメインエラーをHTTPステータスコードに対応付ける
func domainStatus(err error) (int, bool) {
	switch {
	// 404: 対象が存在しない
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, participant.ErrParticipantNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, review.ErrReviewNotFound),
		errors.Is(err, profile.ErrClientNotFound),
		errors.Is(err, profile.ErrHostNotFound),
		errors.Is(err, profile.ErrAdminNotFound):
		return http.StatusNotFound, true

	// 409: 競合（重複参加・満席・確定済みの決済・二重レビュー）
	case errors.Is(err, participant.ErrAlreadyJoined),
		errors.Is(err, participant.ErrParticipantAlreadyLeft),
		errors.Is(err, event.ErrNoSeatsAvailable),
		errors.Is(err, payment.ErrAlreadyTerminal),
		errors.Is(err, payment.ErrTransactionIDDuplicated),
		errors.Is(err, review.ErrAlreadyReviewed):
		return http.StatusConflict, true

	// 422: 状態が操作の前提を満たしていない
	case errors.Is(err, event.ErrEventNotOpen),
		errors.Is(err, event.ErrEventDatePassed),
		errors.Is(err, event.ErrEventNotCompletable),
		errors.Is(err, event.ErrEventNotStarted),
		errors.Is(err, event.ErrEventNotApprovable),
		errors.Is(err, review.ErrEventNotCompleted),
		errors.Is(err, review.ErrPaymentNotPaid):
		return http.StatusUnprocessableEntity, true

	// 403: 権限・アカウント状態による拒否
	case errors.Is(err, application.ErrNotAuthorized),
		errors.Is(err, profile.ErrAccountSuspended),
		errors.Is(err, profile.ErrAccountInactive),
		errors.Is(err, profile.ErrAccountDeleted),
		errors.Is(err, review.ErrNotReviewOwner):
		return http.StatusForbidden, true

	// 400: 入力の検証エラー
	case errors.Is(err, event.ErrTitleRequired),
		errors.Is(err, event.ErrInvalidCapacity),
		errors.Is(err, event.ErrInvalidJoiningFee),
		errors.Is(err, review.ErrInvalidRating):
		return http.StatusBadRequest, true

	// 502: 決済ゲートウェイとの通信エラー
	case errors.Is(err, sslcommerz.ErrCheckoutInitFailed),
		errors.Is(err, sslcommerz.ErrValidationFailed):
		return http.StatusBadGateway, true
	}
	return 0, false
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ハンドラーはサービスのエラーをそのまま返し、変換はここで一元的に行う
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else if status, ok := domainStatus(err); ok {
		code = status
		message = err.Error()
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
