// Package handler はeventsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"event_backend/internal/api"
	"event_backend/internal/feature/events/usecase"
	platformhttp "event_backend/internal/platform/http"
	jwtmw "event_backend/internal/platform/jwt"
	"event_backend/internal/shared/identity"
)

// EventUsecase はイベント操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type EventUsecase interface {
	Create(ctx context.Context, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error)
	Update(ctx context.Context, eventID uint, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error)
	Delete(ctx context.Context, eventID uint, actor identity.Identity) error
	Get(ctx context.Context, eventID uint, caller identity.Identity) (*usecase.EventView, error)
	List(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error)
	ListUpcoming(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error)
	Search(ctx context.Context, term string, caller identity.Identity) ([]usecase.EventView, error)
	FilterByCategory(ctx context.Context, category string, caller identity.Identity) ([]usecase.EventView, error)
	ListByOwner(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error)
}

// EventHandler はイベントのHTTPリクエストを処理します。
type EventHandler struct {
	uc EventUsecase
}

// NewEventHandler は指定されたusecaseでEventHandlerの新しいインスタンスを生成します。
func NewEventHandler(uc EventUsecase) *EventHandler {
	return &EventHandler{uc: uc}
}

// Create は管理者によるイベント作成を処理します。
//
// エンドポイント例:
// POST /events
func (h *EventHandler) Create(c *gin.Context) {
	in, ok := bindEventInput(c)
	if !ok {
		return
	}
	v, err := h.uc.Create(c.Request.Context(), in, jwtmw.IdentityFrom(c))
	if err != nil {
		slog.Warn("event creation failed", "error", err, "remote_addr", c.ClientIP())
		platformhttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(*v))
}

// Update は作成者または管理者によるイベント更新を処理します。
//
// エンドポイント例:
// PUT /events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := platformhttp.PathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindEventInput(c)
	if !ok {
		return
	}
	v, err := h.uc.Update(c.Request.Context(), id, in, jwtmw.IdentityFrom(c))
	if err != nil {
		slog.Warn("event update failed", "event_id", id, "error", err)
		platformhttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*v))
}

// Delete はイベントを論理削除します。
//
// エンドポイント例:
// DELETE /events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := platformhttp.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), id, jwtmw.IdentityFrom(c)); err != nil {
		slog.Warn("event deletion failed", "event_id", id, "error", err)
		platformhttp.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get はイベントを1件返します。
//
// エンドポイント例:
// GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := platformhttp.PathID(c, "id")
	if !ok {
		return
	}
	v, err := h.uc.Get(c.Request.Context(), id, jwtmw.IdentityFrom(c))
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*v))
}

// List はアクティブなイベントの一覧を返します。
func (h *EventHandler) List(c *gin.Context) {
	h.list(c, func(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error) {
		return h.uc.List(ctx, caller)
	})
}

// ListUpcoming は今後開催されるイベントの一覧を返します。
func (h *EventHandler) ListUpcoming(c *gin.Context) {
	h.list(c, h.uc.ListUpcoming)
}

// Search はタイトルまたはカテゴリで検索します。
//
// エンドポイント例:
// GET /events/search?q=go
func (h *EventHandler) Search(c *gin.Context) {
	q := c.Query("q")
	h.list(c, func(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error) {
		return h.uc.Search(ctx, q, caller)
	})
}

// FilterByCategory はカテゴリで絞り込みます。
//
// エンドポイント例:
// GET /events/category/:category
func (h *EventHandler) FilterByCategory(c *gin.Context) {
	category := c.Param("category")
	h.list(c, func(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error) {
		return h.uc.FilterByCategory(ctx, category, caller)
	})
}

// ListMine は呼び出し元が作成したイベントを返します。
func (h *EventHandler) ListMine(c *gin.Context) {
	h.list(c, h.uc.ListByOwner)
}

func (h *EventHandler) list(c *gin.Context, load func(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error)) {
	views, err := load(c.Request.Context(), jwtmw.IdentityFrom(c))
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}

	// データをフォーマット
	out := make([]api.EventResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func bindEventInput(c *gin.Context) (usecase.EventInput, bool) {
	var req api.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("event validation failed", "error", err, "remote_addr", c.ClientIP())
		platformhttp.BadRequest(c, err.Error())
		return usecase.EventInput{}, false
	}
	return usecase.EventInput{
		Title:       req.Title,
		Description: deref(req.Description),
		EventDate:   req.EventDate,
		Venue:       deref(req.Venue),
		Category:    deref(req.Category),
		Capacity:    req.Capacity,
	}, true
}

func toResponse(v usecase.EventView) api.EventResponse {
	return api.EventResponse{
		Id:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		EventDate:       v.EventDate.UTC(),
		Venue:           v.Venue,
		Category:        v.Category,
		Capacity:        v.Capacity,
		RegisteredCount: v.RegisteredCount,
		AvailableSeats:  v.AvailableSeats(),
		Active:          v.Active,
		CreatedBy:       v.CreatedBy,
		CreatedByName:   v.OwnerName,
		IsRegistered:    v.IsRegistered,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
