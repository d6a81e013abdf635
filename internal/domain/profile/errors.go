package profile

import "errors"

// Profile ドメインのエラー定義
var (
	ErrClientNotFound   = errors.New("クライアントが見つかりません")
	ErrHostNotFound     = errors.New("ホストが見つかりません")
	ErrAdminNotFound    = errors.New("管理者が見つかりません")
	ErrAccountSuspended = errors.New("アカウントが停止されているため操作できません")
	ErrAccountInactive  = errors.New("アカウントが有効ではありません")
	ErrAccountDeleted   = errors.New("アカウントは削除されています")
)
