package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound       = errors.New("イベントが見つかりません")
	ErrHostIDRequired      = errors.New("ホストIDは必須です")
	ErrTitleRequired       = errors.New("イベント名は必須です")
	ErrInvalidCapacity     = errors.New("定員は1以上である必要があります")
	ErrInvalidJoiningFee   = errors.New("参加費は0以上である必要があります")
	ErrEventNotOpen        = errors.New("イベントは参加受付中ではありません")
	ErrEventDatePassed     = errors.New("イベントの開催日時を過ぎています")
	ErrNoSeatsAvailable    = errors.New("空き座席がありません")
	ErrEventNotCompletable = errors.New("OPENまたはFULLのイベントのみ完了にできます")
	ErrEventNotStarted     = errors.New("イベントの開催日時がまだ到来していません")
	ErrEventNotApprovable  = errors.New("承認待ちのイベントのみ承認・却下できます")
)
