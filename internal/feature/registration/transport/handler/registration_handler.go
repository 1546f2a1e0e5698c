// Package handler はregistrationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"event_backend/internal/api"
	"event_backend/internal/feature/registration/domain/entity"
	"event_backend/internal/feature/registration/usecase"
	platformhttp "event_backend/internal/platform/http"
	jwtmw "event_backend/internal/platform/jwt"
)

// RegistrationUsecase は登録操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RegistrationUsecase interface {
	Register(ctx context.Context, eventID, userID uint) (*entity.Registration, error)
	Cancel(ctx context.Context, eventID, userID uint) error
	MarkAttended(ctx context.Context, eventID, userID uint) (*entity.Attendance, error)
	ListForUser(ctx context.Context, userID uint) ([]usecase.UserRegistration, error)
	ListForEvent(ctx context.Context, eventID uint, statuses ...entity.Status) ([]usecase.EventRegistrant, error)
	ListAttendance(ctx context.Context, eventID uint) ([]entity.Attendance, error)
	GetAttendance(ctx context.Context, eventID, userID uint) (*entity.Attendance, error)
	AttendanceCount(ctx context.Context, eventID uint) (int64, error)
}

// RegistrationHandler は登録・出席のHTTPリクエストを処理します。
// 呼び出し元はAuthRequiredミドルウェアで解決済みのidentityから取得します。
type RegistrationHandler struct {
	uc RegistrationUsecase
}

// NewRegistrationHandler は指定されたusecaseでRegistrationHandlerの新しいインスタンスを生成します。
func NewRegistrationHandler(uc RegistrationUsecase) *RegistrationHandler {
	return &RegistrationHandler{uc: uc}
}

// Register は呼び出し元をイベントに登録します。
//
// エンドポイント例:
// POST /registrations/events/:eventId
func (h *RegistrationHandler) Register(c *gin.Context) {
	eventID, ok := platformhttp.PathID(c, "eventId")
	if !ok {
		return
	}
	reg, err := h.uc.Register(c.Request.Context(), eventID, jwtmw.IdentityFrom(c).UserID)
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRegistrationResponse(*reg))
}

// Cancel は呼び出し元の登録をキャンセルします。
//
// エンドポイント例:
// DELETE /registrations/events/:eventId
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	eventID, ok := platformhttp.PathID(c, "eventId")
	if !ok {
		return
	}
	if err := h.uc.Cancel(c.Request.Context(), eventID, jwtmw.IdentityFrom(c).UserID); err != nil {
		platformhttp.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMine は呼び出し元の登録一覧をイベント情報付きで返します。
//
// エンドポイント例:
// GET /registrations/me
func (h *RegistrationHandler) ListMine(c *gin.Context) {
	regs, err := h.uc.ListForUser(c.Request.Context(), jwtmw.IdentityFrom(c).UserID)
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}

	out := make([]api.RegistrationResponse, 0, len(regs))
	for _, r := range regs {
		resp := toRegistrationResponse(r.Registration)
		title, date, active := r.EventTitle, r.EventDate.UTC(), r.EventActive
		resp.EventTitle = &title
		resp.EventDate = &date
		resp.EventActive = &active
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

// ListForEvent はイベントの登録者一覧を返します（管理者用）。
// statusクエリはカンマ区切りで複数指定できます。
//
// エンドポイント例:
// GET /events/:id/registrations?status=REGISTERED,ATTENDED
func (h *RegistrationHandler) ListForEvent(c *gin.Context) {
	eventID, ok := platformhttp.PathID(c, "id")
	if !ok {
		return
	}
	var statuses []entity.Status
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, entity.Status(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	regs, err := h.uc.ListForEvent(c.Request.Context(), eventID, statuses...)
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}

	out := make([]api.RegistrantResponse, 0, len(regs))
	for _, r := range regs {
		out = append(out, api.RegistrantResponse{
			Id:           r.ID,
			UserId:       r.UserID,
			Email:        openapi_types.Email(r.Email),
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			Status:       string(r.Status),
			RegisteredAt: r.RegisteredAt.UTC(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// MarkAttended は登録者の出席を記録します（管理者用）。
//
// エンドポイント例:
// POST /events/:id/attendance/:userId
func (h *RegistrationHandler) MarkAttended(c *gin.Context) {
	eventID, ok := platformhttp.PathID(c, "id")
	if !ok {
		return
	}
	userID, ok := platformhttp.PathID(c, "userId")
	if !ok {
		return
	}
	att, err := h.uc.MarkAttended(c.Request.Context(), eventID, userID)
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAttendanceResponse(*att))
}

// ListAttendance はイベントの出席記録と出席者数を返します（管理者用）。
//
// エンドポイント例:
// GET /events/:id/attendance
func (h *RegistrationHandler) ListAttendance(c *gin.Context) {
	eventID, ok := platformhttp.PathID(c, "id")
	if !ok {
		return
	}
	atts, err := h.uc.ListAttendance(c.Request.Context(), eventID)
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}
	count, err := h.uc.AttendanceCount(c.Request.Context(), eventID)
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}

	out := api.AttendanceListResponse{
		Count:     count,
		Attendees: make([]api.AttendanceResponse, 0, len(atts)),
	}
	for _, a := range atts {
		out.Attendees = append(out.Attendees, toAttendanceResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// GetAttendance はユーザーの出席記録を返します（管理者用）。
//
// エンドポイント例:
// GET /events/:id/attendance/:userId
func (h *RegistrationHandler) GetAttendance(c *gin.Context) {
	eventID, ok := platformhttp.PathID(c, "id")
	if !ok {
		return
	}
	userID, ok := platformhttp.PathID(c, "userId")
	if !ok {
		return
	}
	att, err := h.uc.GetAttendance(c.Request.Context(), eventID, userID)
	if err != nil {
		platformhttp.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(*att))
}

func toRegistrationResponse(r entity.Registration) api.RegistrationResponse {
	resp := api.RegistrationResponse{
		Id:           r.ID,
		EventId:      r.EventID,
		UserId:       r.UserID,
		Status:       string(r.Status),
		RegisteredAt: r.RegisteredAt.UTC(),
	}
	if r.ConfirmationSentAt != nil {
		at := r.ConfirmationSentAt.UTC()
		resp.ConfirmationSentAt = &at
	}
	return resp
}

func toAttendanceResponse(a entity.Attendance) api.AttendanceResponse {
	return api.AttendanceResponse{
		Id:          a.ID,
		EventId:     a.EventID,
		UserId:      a.UserID,
		CheckedInAt: a.CheckedInAt.UTC(),
	}
}
