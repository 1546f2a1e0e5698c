package http

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"event_backend/internal/api"
	"event_backend/internal/shared/apperr"
)

// WriteError はエラーの種別に応じたステータスコードでErrorResponseを返します。
// 予期しないエラーは内容を隠し、ログにのみ出力します。
func WriteError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, api.ErrorResponse{Error: apperr.PublicMessage(err)})
}

// BadRequest は入力検証の失敗を400で返します。
func BadRequest(c *gin.Context, msg string) {
	c.JSON(400, api.ErrorResponse{Error: msg})
}

// PathID はパスパラメータを正の整数IDとして解析します。不正な場合は400を返してfalseを返します。
func PathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || v == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
