package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound         = errors.New("決済が見つかりません")
	ErrTransactionIDRequired   = errors.New("トランザクションIDは必須です")
	ErrEventIDRequired         = errors.New("イベントIDは必須です")
	ErrClientIDRequired        = errors.New("クライアントIDは必須です")
	ErrHostIDRequired          = errors.New("ホストIDは必須です")
	ErrInvalidAmount           = errors.New("金額は0以上である必要があります")
	ErrTransactionIDDuplicated = errors.New("同じトランザクションIDの決済が既に存在します")
	ErrAlreadyTerminal         = errors.New("決済は既に終端状態です")
)
