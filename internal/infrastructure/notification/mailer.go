package notification

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sanosuguru/go-event-booking/internal/config"
)

// Invoice は請求書メールのテンプレートデータ
type Invoice struct {
	TransactionID string
	Amount        float64
	ClientName    string
	ClientEmail   string
	EventTitle    string
	EventDate     time.Time
	HostName      string
}

// Mailer は請求書メールを送信する
// 送信失敗は呼び出し側でログに残すのみで、精算処理を失敗させてはならない
type Mailer struct {
	cfg *config.MailConfig
}

// NewMailer は新しいMailerを作成する
func NewMailer(cfg *config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendInvoice は決済完了の請求書メールを送信する
func (m *Mailer) SendInvoice(inv Invoice) error {
	if m.cfg.SMTPHost == "" {
		// SMTP未設定の環境（ローカル開発等）では送信をスキップ
		return nil
	}

	subject := fmt.Sprintf("お支払いの確認: %s", inv.EventTitle)
	body := buildInvoiceBody(inv)

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + inv.ClientEmail,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{inv.ClientEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("請求書メール送信に失敗: %w", err)
	}
	return nil
}

func buildInvoiceBody(inv Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 様\n\n", inv.ClientName)
	fmt.Fprintf(&b, "お支払いが完了しました。\n\n")
	fmt.Fprintf(&b, "請求書番号: %s\n", inv.TransactionID)
	fmt.Fprintf(&b, "金額: %.2f\n", inv.Amount)
	fmt.Fprintf(&b, "イベント: %s\n", inv.EventTitle)
	if !inv.EventDate.IsZero() {
		fmt.Fprintf(&b, "開催日時: %s\n", inv.EventDate.Format("2006-01-02 15:04"))
	}
	if inv.HostName != "" {
		fmt.Fprintf(&b, "主催者: %s\n", inv.HostName)
	}
	return b.String()
}
