package review

import "errors"

// Review ドメインのエラー定義
var (
	ErrReviewNotFound        = errors.New("レビューが見つかりません")
	ErrTransactionIDRequired = errors.New("トランザクションIDは必須です")
	ErrInvalidRating         = errors.New("評価は1から5の整数である必要があります")
	ErrAlreadyReviewed       = errors.New("このイベントは既にレビュー済みです")
	ErrEventNotCompleted     = errors.New("完了していないイベントはレビューできません")
	ErrPaymentNotPaid        = errors.New("決済が完了していないためレビューできません")
	ErrNotReviewOwner        = errors.New("自分が参加したイベントのみレビューできます")
)
