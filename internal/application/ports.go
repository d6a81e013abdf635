package application

import (
	"context"
	"errors"

	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/notification"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/sslcommerz"
)

// アプリケーション層のエラー定義
var (
	ErrNotAuthorized = errors.New("この操作を行う権限がありません")
)

// Actor は認証コラボレーターが提供する操作主体
// 身元は信頼し、このコアはドメイン状態（停止・削除）のみ再検証する
type Actor struct {
	ID   string
	Role profile.Role
}

// IsAdmin は管理者かを返す
func (a Actor) IsAdmin() bool {
	return a.Role == profile.RoleAdmin
}

// CheckoutGateway は決済ゲートウェイのインターフェース
type CheckoutGateway interface {
	InitCheckout(ctx context.Context, input sslcommerz.CheckoutInput) (string, error)
}

// InvoiceSender は請求書通知のインターフェース
// 送信失敗は精算の成否に影響させない
type InvoiceSender interface {
	SendInvoice(inv notification.Invoice) error
}
