package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
)

// actorFrom は認証コラボレーターが付与したヘッダーから操作主体を取り出す
// 身元の検証は前段の認証基盤が済ませている前提で、ここでは値の有無のみ確認する
func actorFrom(c echo.Context) (application.Actor, error) {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return application.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	role := profile.Role(strings.ToUpper(c.Request().Header.Get("X-User-Role")))
	switch role {
	case profile.RoleClient, profile.RoleHost, profile.RoleAdmin:
	default:
		return application.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "ロールが不正です")
	}

	return application.Actor{ID: userID, Role: role}, nil
}
