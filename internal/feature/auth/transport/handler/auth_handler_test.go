package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"event_backend/internal/feature/auth/domain/entity"
	"event_backend/internal/feature/auth/usecase"
	"event_backend/internal/shared/identity"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	SignupFunc func(ctx context.Context, email, password, firstName, lastName string) (*entity.User, error)
	LoginFunc  func(ctx context.Context, email, password string) (*usecase.LoginResult, error)
}

// Signup is the mock implementation of the Signup method.
func (m *mockAuthUsecase) Signup(ctx context.Context, email, password, firstName, lastName string) (*entity.User, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password, firstName, lastName)
	}
	return &entity.User{ID: 1, Email: email, FirstName: firstName, LastName: lastName, Role: identity.RoleUser}, nil
}

// Login is the mock implementation of the Login method.
func (m *mockAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, errors.New("login failed") // Default: failure
}

func TestAuthHandler_Signup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	valid := gin.H{"email": "test@example.com", "password": "password123", "firstName": "Ada", "lastName": "Lovelace"}
	with := func(k string, v any) gin.H {
		out := gin.H{}
		for key, val := range valid {
			out[key] = val
		}
		out[k] = v
		return out
	}

	tests := []struct {
		name           string
		requestBody    gin.H
		mockSignupFunc func(ctx context.Context, email, password, firstName, lastName string) (*entity.User, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:           "success: user registration",
			requestBody:    valid,
			expectedStatus: http.StatusCreated,
			expectedBody:   gin.H{"id": float64(1), "email": "test@example.com", "firstName": "Ada", "lastName": "Lovelace", "role": "USER"},
		},
		{
			name:           "failure: invalid email address",
			requestBody:    with("email", "invalid-email"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: short password",
			requestBody:    with("password", "short"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Field validation for 'Password' failed on the 'min' tag"},
		},
		{
			name:           "failure: missing last name",
			requestBody:    with("lastName", ""),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Field validation for 'LastName' failed on the 'required' tag"},
		},
		{
			name:        "failure: duplicate email (usecase error)",
			requestBody: valid,
			mockSignupFunc: func(context.Context, string, string, string, string) (*entity.User, error) {
				return nil, usecase.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   gin.H{"error": "email already exists"},
		},
		{
			name:        "failure: database error is hidden",
			requestBody: valid,
			mockSignupFunc: func(context.Context, string, string, string, string) (*entity.User, error) {
				return nil, errors.New("connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "internal error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{SignupFunc: tt.mockSignupFunc}
			handler := NewAuthHandler(mockUC)

			router := gin.New()
			router.POST("/auth/signup", handler.Signup)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var responseBody gin.H
			err := json.Unmarshal(w.Body.Bytes(), &responseBody)
			assert.NoError(t, err)

			// Error messages include Gin validation error details, so check partial match
			switch {
			case tt.expectedStatus == http.StatusBadRequest && tt.expectedBody != nil:
				assert.Contains(t, responseBody["error"], tt.expectedBody["error"])
			case tt.expectedStatus == http.StatusBadRequest:
				assert.NotEmpty(t, responseBody["error"])
			default:
				assert.Equal(t, tt.expectedBody, responseBody)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockLoginFunc  func(ctx context.Context, email, password string) (*usecase.LoginResult, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:        "success: user login",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc: func(_ context.Context, email, _ string) (*usecase.LoginResult, error) {
				return &usecase.LoginResult{Token: "mock-jwt-token", UserID: 7, Email: email, FirstName: "Ada", LastName: "Lovelace", Role: identity.RoleAdmin}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: gin.H{
				"token": "mock-jwt-token", "userId": float64(7), "email": "test@example.com",
				"firstName": "Ada", "lastName": "Lovelace", "role": "ADMIN",
			},
		},
		{
			name:           "failure: missing password",
			requestBody:    gin.H{"email": "test@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "invalid request"},
		},
		{
			name:        "failure: wrong password",
			requestBody: gin.H{"email": "test@example.com", "password": "wrong"},
			mockLoginFunc: func(context.Context, string, string) (*usecase.LoginResult, error) {
				return nil, usecase.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   gin.H{"error": "invalid email or password"},
		},
		{
			name:        "failure: unknown email",
			requestBody: gin.H{"email": "nobody@example.com", "password": "password123"},
			mockLoginFunc: func(context.Context, string, string) (*usecase.LoginResult, error) {
				return nil, usecase.ErrUserNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   gin.H{"error": "user not found"},
		},
		{
			name:        "failure: disabled account",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc: func(context.Context, string, string) (*usecase.LoginResult, error) {
				return nil, usecase.ErrAccountDisabled
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   gin.H{"error": "account is disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{LoginFunc: tt.mockLoginFunc}
			handler := NewAuthHandler(mockUC)

			router := gin.New()
			router.POST("/auth/login", handler.Login)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var responseBody gin.H
			err := json.Unmarshal(w.Body.Bytes(), &responseBody)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, responseBody)
		})
	}
}
