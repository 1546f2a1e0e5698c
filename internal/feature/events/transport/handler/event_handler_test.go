package handler_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"event_backend/internal/feature/events/domain/entity"
	"event_backend/internal/feature/events/transport/handler"
	"event_backend/internal/feature/events/usecase"
	jwtmw "event_backend/internal/platform/jwt"
	"event_backend/internal/shared/identity"
)

// mockEventUsecase はEventUsecaseインターフェースのモック実装です。
type mockEventUsecase struct {
	CreateFunc           func(ctx context.Context, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error)
	UpdateFunc           func(ctx context.Context, eventID uint, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error)
	DeleteFunc           func(ctx context.Context, eventID uint, actor identity.Identity) error
	GetFunc              func(ctx context.Context, eventID uint, caller identity.Identity) (*usecase.EventView, error)
	ListFunc             func(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error)
	ListUpcomingFunc     func(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error)
	SearchFunc           func(ctx context.Context, term string, caller identity.Identity) ([]usecase.EventView, error)
	FilterByCategoryFunc func(ctx context.Context, category string, caller identity.Identity) ([]usecase.EventView, error)
	ListByOwnerFunc      func(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error)
}

func (m *mockEventUsecase) Create(ctx context.Context, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error) {
	return m.CreateFunc(ctx, in, actor)
}

func (m *mockEventUsecase) Update(ctx context.Context, eventID uint, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error) {
	return m.UpdateFunc(ctx, eventID, in, actor)
}

func (m *mockEventUsecase) Delete(ctx context.Context, eventID uint, actor identity.Identity) error {
	return m.DeleteFunc(ctx, eventID, actor)
}

func (m *mockEventUsecase) Get(ctx context.Context, eventID uint, caller identity.Identity) (*usecase.EventView, error) {
	return m.GetFunc(ctx, eventID, caller)
}

func (m *mockEventUsecase) List(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error) {
	return m.ListFunc(ctx, caller)
}

func (m *mockEventUsecase) ListUpcoming(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error) {
	return m.ListUpcomingFunc(ctx, caller)
}

func (m *mockEventUsecase) Search(ctx context.Context, term string, caller identity.Identity) ([]usecase.EventView, error) {
	return m.SearchFunc(ctx, term, caller)
}

func (m *mockEventUsecase) FilterByCategory(ctx context.Context, category string, caller identity.Identity) ([]usecase.EventView, error) {
	return m.FilterByCategoryFunc(ctx, category, caller)
}

func (m *mockEventUsecase) ListByOwner(ctx context.Context, caller identity.Identity) ([]usecase.EventView, error) {
	return m.ListByOwnerFunc(ctx, caller)
}

var (
	testDate = time.Date(2030, 4, 1, 18, 30, 0, 0, time.UTC)
	admin    = identity.Identity{UserID: 1, Email: "admin@example.com", Role: identity.RoleAdmin}
)

func sampleView() usecase.EventView {
	return usecase.EventView{
		Event: entity.Event{
			ID: 5, Title: "Go Meetup", Description: "talks", EventDate: testDate, Venue: "Hall A",
			Category: "Tech", Capacity: 10, RegisteredCount: 3, CreatedBy: 1, Active: true,
		},
		OwnerName:    "Ada Lovelace",
		IsRegistered: true,
	}
}

const sampleJSON = `{"id":5,"title":"Go Meetup","description":"talks","eventDate":"2030-04-01T18:30:00Z","venue":"Hall A",` +
	`"category":"Tech","capacity":10,"registeredCount":3,"availableSeats":7,"active":true,"createdBy":1,` +
	`"createdByName":"Ada Lovelace","isRegistered":true}`

// newRouter はidentityを注入したルーターを生成します。
func newRouter(h *handler.EventHandler, caller identity.Identity) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextIdentity, caller)
		c.Next()
	})
	r.GET("/events", h.List)
	r.GET("/events/upcoming", h.ListUpcoming)
	r.GET("/events/search", h.Search)
	r.GET("/events/mine", h.ListMine)
	r.GET("/events/category/:category", h.FilterByCategory)
	r.GET("/events/:id", h.Get)
	r.POST("/events", h.Create)
	r.PUT("/events/:id", h.Update)
	r.DELETE("/events/:id", h.Delete)
	return r
}

func serve(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestEventHandler_Create はイベント作成リクエストの処理を検証します。
func TestEventHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		mockCreate     func(ctx context.Context, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"title":"Go Meetup","description":"talks","eventDate":"2030-04-01T18:30:00","venue":"Hall A","category":"Tech","capacity":10}`,
			mockCreate: func(_ context.Context, in usecase.EventInput, actor identity.Identity) (*usecase.EventView, error) {
				assert.Equal(t, usecase.EventInput{
					Title: "Go Meetup", Description: "talks", EventDate: "2030-04-01T18:30:00",
					Venue: "Hall A", Category: "Tech", Capacity: 10,
				}, in)
				assert.Equal(t, admin, actor)
				v := sampleView()
				return &v, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   sampleJSON,
		},
		{
			name:           "missing title",
			body:           `{"eventDate":"2030-04-01T18:30:00","capacity":10}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "forbidden",
			body: `{"title":"x","eventDate":"2030-04-01T18:30:00","capacity":10}`,
			mockCreate: func(context.Context, usecase.EventInput, identity.Identity) (*usecase.EventView, error) {
				return nil, usecase.ErrAdminOnly
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"error":"only admins can create events"}`,
		},
		{
			name: "invalid date",
			body: `{"title":"x","eventDate":"tomorrow","capacity":10}`,
			mockCreate: func(context.Context, usecase.EventInput, identity.Identity) (*usecase.EventView, error) {
				return nil, usecase.ErrInvalidEventDate
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"event date must be an ISO-8601 date-time"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewEventHandler(&mockEventUsecase{CreateFunc: tt.mockCreate})
			w := serve(newRouter(h, admin), http.MethodPost, "/events", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

// TestEventHandler_UpdateDelete は更新・削除のステータスコードを検証します。
func TestEventHandler_UpdateDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mock := &mockEventUsecase{
		UpdateFunc: func(_ context.Context, id uint, in usecase.EventInput, _ identity.Identity) (*usecase.EventView, error) {
			switch id {
			case 5:
				v := sampleView()
				return &v, nil
			case 6:
				return nil, usecase.ErrNotOwner
			default:
				return nil, usecase.ErrCapacityBelowRegistered
			}
		},
		DeleteFunc: func(_ context.Context, id uint, _ identity.Identity) error {
			if id == 5 {
				return nil
			}
			return usecase.ErrEventNotFound
		},
	}
	r := newRouter(handler.NewEventHandler(mock), admin)
	body := `{"title":"Go Meetup","eventDate":"2030-04-01T18:30:00Z","capacity":10}`

	w := serve(r, http.MethodPut, "/events/5", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, sampleJSON, w.Body.String())

	w = serve(r, http.MethodPut, "/events/6", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodPut, "/events/7", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodPut, "/events/abc", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodDelete, "/events/5", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(r, http.MethodDelete, "/events/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"event not found"}`, w.Body.String())
}

// TestEventHandler_Queries は一覧系エンドポイントが引数と呼び出し元を渡すことを検証します。
func TestEventHandler_Queries(t *testing.T) {
	gin.SetMode(gin.TestMode)

	list := func(context.Context, identity.Identity) ([]usecase.EventView, error) {
		return []usecase.EventView{sampleView()}, nil
	}
	var gotTerm, gotCategory string
	mock := &mockEventUsecase{
		ListFunc:         list,
		ListUpcomingFunc: list,
		ListByOwnerFunc:  list,
		SearchFunc: func(_ context.Context, term string, _ identity.Identity) ([]usecase.EventView, error) {
			gotTerm = term
			return nil, nil
		},
		FilterByCategoryFunc: func(_ context.Context, category string, _ identity.Identity) ([]usecase.EventView, error) {
			gotCategory = category
			return nil, errors.New("db down")
		},
		GetFunc: func(_ context.Context, id uint, caller identity.Identity) (*usecase.EventView, error) {
			assert.True(t, caller.IsAnonymous())
			if id != 5 {
				return nil, usecase.ErrEventNotFound
			}
			v := sampleView()
			return &v, nil
		},
	}
	r := newRouter(handler.NewEventHandler(mock), identity.Anonymous)

	for _, url := range []string{"/events", "/events/upcoming", "/events/mine"} {
		w := serve(r, http.MethodGet, url, "")
		assert.Equal(t, http.StatusOK, w.Code, url)
		assert.JSONEq(t, "["+sampleJSON+"]", w.Body.String(), url)
	}

	w := serve(r, http.MethodGet, "/events/search?q=go%20meetup", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	assert.Equal(t, "go meetup", gotTerm)

	w = serve(r, http.MethodGet, "/events/category/Tech", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
	assert.Equal(t, "Tech", gotCategory)

	w = serve(r, http.MethodGet, "/events/5", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/events/8", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
