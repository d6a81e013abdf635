package participant

import "errors"

// Participant ドメインのエラー定義
var (
	ErrParticipantNotFound    = errors.New("参加情報が見つかりません")
	ErrAlreadyJoined          = errors.New("既にこのイベントに参加しています")
	ErrParticipantAlreadyLeft = errors.New("参加者は既に離脱しています")
	ErrEventIDRequired        = errors.New("イベントIDは必須です")
	ErrClientIDRequired       = errors.New("クライアントIDは必須です")
	ErrTransactionIDRequired  = errors.New("トランザクションIDは必須です")
)
