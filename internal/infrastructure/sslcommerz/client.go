package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sanosuguru/go-event-booking/internal/config"
)

var (
	ErrCheckoutInitFailed = errors.New("決済セッションの開始に失敗しました")
	ErrValidationFailed   = errors.New("決済の検証に失敗しました")
)

// Client はSSLCommerzゲートウェイのアダプター
type Client struct {
	cfg        *config.GatewayConfig
	httpClient *http.Client
}

// NewClient は新しいゲートウェイアダプターを作成する
func NewClient(cfg *config.GatewayConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// CheckoutInput はチェックアウトセッション開始の入力
type CheckoutInput struct {
	TransactionID string
	Amount        float64
	Name          string
	Email         string
	Phone         string
	Address       string
	ProductName   string
}

// initResponse はゲートウェイの初期化レスポンス
type initResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitCheckout はチェックアウトセッションを開始し、決済ページURLを返す
func (c *Client) InitCheckout(ctx context.Context, input CheckoutInput) (string, error) {
	form := url.Values{}
	form.Set("store_id", c.cfg.StoreID)
	form.Set("store_passwd", c.cfg.StorePassword)
	form.Set("total_amount", fmt.Sprintf("%.2f", input.Amount))
	form.Set("currency", "BDT")
	form.Set("tran_id", input.TransactionID)
	form.Set("success_url", callbackURL(c.cfg.SuccessURL, input.TransactionID))
	form.Set("fail_url", callbackURL(c.cfg.FailURL, input.TransactionID))
	form.Set("cancel_url", callbackURL(c.cfg.CancelURL, input.TransactionID))
	form.Set("shipping_method", "N/A")
	form.Set("product_name", input.ProductName)
	form.Set("product_category", "Service")
	form.Set("product_profile", "general")
	form.Set("cus_name", input.Name)
	form.Set("cus_email", input.Email)
	form.Set("cus_add1", input.Address)
	form.Set("cus_city", "Dhaka")
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", input.Phone)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.PaymentAPI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCheckoutInitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ステータスコード %d", ErrCheckoutInitFailed, resp.StatusCode)
	}

	var body initResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: レスポンス解析エラー: %v", ErrCheckoutInitFailed, err)
	}
	if body.GatewayPageURL == "" {
		if body.FailedReason != "" {
			return "", fmt.Errorf("%w: %s", ErrCheckoutInitFailed, body.FailedReason)
		}
		return "", ErrCheckoutInitFailed
	}

	return body.GatewayPageURL, nil
}

// ValidationResult はゲートウェイの検証レスポンス
type ValidationResult struct {
	Status        string  `json:"status"`
	TransactionID string  `json:"tran_id"`
	Amount        float64 `json:"amount,string"`
}

// ValidatePayment はゲートウェイに val_id の正当性を問い合わせる
func (c *Client) ValidatePayment(ctx context.Context, valID string) (*ValidationResult, error) {
	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.cfg.StoreID)
	q.Set("store_passwd", c.cfg.StorePassword)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ValidationAPI+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ステータスコード %d", ErrValidationFailed, resp.StatusCode)
	}

	var result ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: レスポンス解析エラー: %v", ErrValidationFailed, err)
	}
	return &result, nil
}

func callbackURL(base, transactionID string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "transactionId=" + url.QueryEscape(transactionID)
}
