package profile

import "time"

// Role はプロフィールの種別を表す
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleHost   Role = "HOST"
	RoleAdmin  Role = "ADMIN"
)

// AccountStatus はアカウントの状態を表す
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

// Profile は役割ごとのプロフィールが共有する識別情報のインターフェース
// 役割の集合は Client / Host / Admin で閉じている
type Profile interface {
	ProfileID() string
	ProfileRole() Role
	// CanAct はドメイン操作を実行できる状態かを返す
	// （ACTIVE であり、削除されていないこと）
	CanAct() bool
}

// Identity は全プロフィール共通のフィールド
type Identity struct {
	ID        string
	Name      string
	Email     string
	Status    AccountStatus
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i Identity) ProfileID() string { return i.ID }

func (i Identity) CanAct() bool {
	return i.Status == AccountActive && !i.IsDeleted
}

// IsSuspended は停止中かを返す
func (i Identity) IsSuspended() bool {
	return i.Status == AccountSuspended
}

// ActError は操作できない理由をエラーとして返す
// 操作できる場合は nil を返す
func (i Identity) ActError() error {
	switch {
	case i.IsDeleted:
		return ErrAccountDeleted
	case i.Status == AccountSuspended:
		return ErrAccountSuspended
	case i.Status != AccountActive:
		return ErrAccountInactive
	default:
		return nil
	}
}

// Client はイベントに参加する側のプロフィール
type Client struct {
	Identity
	ContactNumber string
	Location      string
}

func (c *Client) ProfileRole() Role { return RoleClient }

// Host はイベントを主催する側のプロフィール
// Income は精算処理のみが加算し、Rating / RatingCount はレビュー登録のみが更新する
type Host struct {
	Identity
	Income      float64
	Rating      float64
	RatingCount int
}

func (h *Host) ProfileRole() Role { return RoleHost }

// Admin は管理者プロフィール
// Income は精算処理による手数料収入の累計
type Admin struct {
	Identity
	Income float64
}

func (a *Admin) ProfileRole() Role { return RoleAdmin }
