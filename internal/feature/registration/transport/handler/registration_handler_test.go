package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"event_backend/internal/feature/registration/domain/entity"
	"event_backend/internal/feature/registration/usecase"
	jwtmw "event_backend/internal/platform/jwt"
	"event_backend/internal/shared/identity"
)

// mockRegistrationUsecase はRegistrationUsecaseインターフェースのモック実装です。
type mockRegistrationUsecase struct {
	RegisterFunc        func(ctx context.Context, eventID, userID uint) (*entity.Registration, error)
	CancelFunc          func(ctx context.Context, eventID, userID uint) error
	MarkAttendedFunc    func(ctx context.Context, eventID, userID uint) (*entity.Attendance, error)
	ListForUserFunc     func(ctx context.Context, userID uint) ([]usecase.UserRegistration, error)
	ListForEventFunc    func(ctx context.Context, eventID uint, statuses ...entity.Status) ([]usecase.EventRegistrant, error)
	ListAttendanceFunc  func(ctx context.Context, eventID uint) ([]entity.Attendance, error)
	GetAttendanceFunc   func(ctx context.Context, eventID, userID uint) (*entity.Attendance, error)
	AttendanceCountFunc func(ctx context.Context, eventID uint) (int64, error)
}

func (m *mockRegistrationUsecase) Register(ctx context.Context, eventID, userID uint) (*entity.Registration, error) {
	return m.RegisterFunc(ctx, eventID, userID)
}

func (m *mockRegistrationUsecase) Cancel(ctx context.Context, eventID, userID uint) error {
	return m.CancelFunc(ctx, eventID, userID)
}

func (m *mockRegistrationUsecase) MarkAttended(ctx context.Context, eventID, userID uint) (*entity.Attendance, error) {
	return m.MarkAttendedFunc(ctx, eventID, userID)
}

func (m *mockRegistrationUsecase) ListForUser(ctx context.Context, userID uint) ([]usecase.UserRegistration, error) {
	return m.ListForUserFunc(ctx, userID)
}

func (m *mockRegistrationUsecase) ListForEvent(ctx context.Context, eventID uint, statuses ...entity.Status) ([]usecase.EventRegistrant, error) {
	return m.ListForEventFunc(ctx, eventID, statuses...)
}

func (m *mockRegistrationUsecase) ListAttendance(ctx context.Context, eventID uint) ([]entity.Attendance, error) {
	return m.ListAttendanceFunc(ctx, eventID)
}

func (m *mockRegistrationUsecase) GetAttendance(ctx context.Context, eventID, userID uint) (*entity.Attendance, error) {
	return m.GetAttendanceFunc(ctx, eventID, userID)
}

func (m *mockRegistrationUsecase) AttendanceCount(ctx context.Context, eventID uint) (int64, error) {
	return m.AttendanceCountFunc(ctx, eventID)
}

var (
	caller = identity.Identity{UserID: 42, Email: "ada@example.com", Role: identity.RoleUser}
	at     = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
)

func newRouter(m *mockRegistrationUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRegistrationHandler(m)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextIdentity, caller)
		c.Next()
	})
	r.POST("/registrations/events/:eventId", h.Register)
	r.DELETE("/registrations/events/:eventId", h.Cancel)
	r.GET("/registrations/me", h.ListMine)
	r.GET("/events/:id/registrations", h.ListForEvent)
	r.POST("/events/:id/attendance/:userId", h.MarkAttended)
	r.GET("/events/:id/attendance", h.ListAttendance)
	r.GET("/events/:id/attendance/:userId", h.GetAttendance)
	return r
}

func serve(r *gin.Engine, method, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, url, nil))
	return w
}

// TestRegistrationHandler_Register は登録結果とエラーのステータスコードを検証します。
func TestRegistrationHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success",
			url:            "/registrations/events/7",
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":1,"eventId":7,"userId":42,"status":"REGISTERED","registeredAt":"2030-01-02T03:04:05Z","confirmationSentAt":"2030-01-02T03:04:05Z"}`,
		},
		{
			name:           "full",
			url:            "/registrations/events/7",
			err:            usecase.ErrEventFull,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"event is at full capacity"}`,
		},
		{
			name:           "duplicate",
			url:            "/registrations/events/7",
			err:            usecase.ErrAlreadyRegistered,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"user already registered for this event"}`,
		},
		{
			name:           "missing event",
			url:            "/registrations/events/7",
			err:            usecase.ErrEventNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"event not found"}`,
		},
		{
			name:           "bad id",
			url:            "/registrations/events/x",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid eventId"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockRegistrationUsecase{
				RegisterFunc: func(_ context.Context, eventID, userID uint) (*entity.Registration, error) {
					assert.Equal(t, uint(42), userID)
					if tt.err != nil {
						return nil, tt.err
					}
					sent := at
					return &entity.Registration{ID: 1, EventID: eventID, UserID: userID, Status: entity.StatusRegistered, RegisteredAt: at, ConfirmationSentAt: &sent}, nil
				},
			}
			w := serve(newRouter(m), http.MethodPost, tt.url)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestRegistrationHandler_Cancel はキャンセルのステータスコードを検証します。
func TestRegistrationHandler_Cancel(t *testing.T) {
	m := &mockRegistrationUsecase{
		CancelFunc: func(_ context.Context, eventID, _ uint) error {
			if eventID == 7 {
				return nil
			}
			return usecase.ErrRegistrationNotFound
		},
	}
	r := newRouter(m)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/registrations/events/7").Code)

	w := serve(r, http.MethodDelete, "/registrations/events/8")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"registration not found"}`, w.Body.String())
}

// TestRegistrationHandler_ListMine はイベント情報付きの一覧を検証します。
func TestRegistrationHandler_ListMine(t *testing.T) {
	m := &mockRegistrationUsecase{
		ListForUserFunc: func(_ context.Context, userID uint) ([]usecase.UserRegistration, error) {
			assert.Equal(t, uint(42), userID)
			return []usecase.UserRegistration{{
				Registration: entity.Registration{ID: 1, EventID: 7, UserID: 42, Status: entity.StatusCancelled, RegisteredAt: at},
				EventTitle:   "Go Meetup",
				EventDate:    at,
				EventActive:  false,
			}}, nil
		},
	}

	w := serve(newRouter(m), http.MethodGet, "/registrations/me")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"eventId":7,"userId":42,"status":"CANCELLED","registeredAt":"2030-01-02T03:04:05Z",`+
		`"eventTitle":"Go Meetup","eventDate":"2030-01-02T03:04:05Z","eventActive":false}]`, w.Body.String())
}

// TestRegistrationHandler_ListForEvent はstatusクエリの解析を検証します。
func TestRegistrationHandler_ListForEvent(t *testing.T) {
	var got []entity.Status
	m := &mockRegistrationUsecase{
		ListForEventFunc: func(_ context.Context, eventID uint, statuses ...entity.Status) ([]usecase.EventRegistrant, error) {
			got = statuses
			for _, s := range statuses {
				if !s.Valid() {
					return nil, usecase.ErrInvalidStatus
				}
			}
			return []usecase.EventRegistrant{{
				Registration: entity.Registration{ID: 3, EventID: eventID, UserID: 9, Status: entity.StatusRegistered, RegisteredAt: at},
				Email:        "grace@example.com",
				FirstName:    "Grace",
				LastName:     "Hopper",
			}}, nil
		},
	}
	r := newRouter(m)

	w := serve(r, http.MethodGet, "/events/7/registrations?status=registered,%20ATTENDED")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []entity.Status{entity.StatusRegistered, entity.StatusAttended}, got)
	assert.JSONEq(t, `[{"id":3,"userId":9,"email":"grace@example.com","firstName":"Grace","lastName":"Hopper",`+
		`"status":"REGISTERED","registeredAt":"2030-01-02T03:04:05Z"}]`, w.Body.String())

	w = serve(r, http.MethodGet, "/events/7/registrations")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, got)

	w = serve(r, http.MethodGet, "/events/7/registrations?status=PENDING")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestRegistrationHandler_Attendance は出席記録と一覧を検証します。
func TestRegistrationHandler_Attendance(t *testing.T) {
	m := &mockRegistrationUsecase{
		MarkAttendedFunc: func(_ context.Context, eventID, userID uint) (*entity.Attendance, error) {
			if userID == 9 {
				return &entity.Attendance{ID: 2, EventID: eventID, UserID: userID, CheckedInAt: at}, nil
			}
			return nil, usecase.ErrNotRegistered
		},
		ListAttendanceFunc: func(_ context.Context, eventID uint) ([]entity.Attendance, error) {
			return []entity.Attendance{{ID: 2, EventID: eventID, UserID: 9, CheckedInAt: at}}, nil
		},
		GetAttendanceFunc: func(_ context.Context, eventID, userID uint) (*entity.Attendance, error) {
			if userID == 9 {
				return &entity.Attendance{ID: 2, EventID: eventID, UserID: userID, CheckedInAt: at}, nil
			}
			return nil, usecase.ErrAttendanceNotFound
		},
		AttendanceCountFunc: func(context.Context, uint) (int64, error) {
			return 1, nil
		},
	}
	r := newRouter(m)

	w := serve(r, http.MethodPost, "/events/7/attendance/9")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":2,"eventId":7,"userId":9,"checkedInAt":"2030-01-02T03:04:05Z"}`, w.Body.String())

	w = serve(r, http.MethodPost, "/events/7/attendance/10")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodGet, "/events/7/attendance")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1,"attendees":[{"id":2,"eventId":7,"userId":9,"checkedInAt":"2030-01-02T03:04:05Z"}]}`, w.Body.String())

	w = serve(r, http.MethodGet, "/events/7/attendance/9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"eventId":7,"userId":9,"checkedInAt":"2030-01-02T03:04:05Z"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/events/7/attendance/10")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"attendance not found"}`, w.Body.String())
}
