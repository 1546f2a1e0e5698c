// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"event_backend/internal/api"
)

// defaultCheckTimeout は依存先1件あたりの確認時間の上限です。
const defaultCheckTimeout = 2 * time.Second

// CheckFunc は依存先（DB、Redisなど）の疎通を確認します。
type CheckFunc func(ctx context.Context) error

// HealthHandler は /healthz エンドポイントを処理します。
type HealthHandler struct {
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成します。
// checksが空の場合はプロセスの生存のみを返します。
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: defaultCheckTimeout}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// 依存先のいずれかが応答しない場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status, results := h.run(c.Request.Context())
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(code)
		return
	}

	resp := api.HealthResponse{Status: status}
	if len(results) > 0 {
		resp.Checks = &results
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) run(ctx context.Context) (string, map[string]string) {
	if len(h.checks) == 0 {
		return "ok", nil
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	results := make(map[string]string, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, h.timeout)
		err := h.checks[name](cctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			results[name] = "unavailable"
			status = "degraded"
			continue
		}
		results[name] = "ok"
	}
	return status, results
}
