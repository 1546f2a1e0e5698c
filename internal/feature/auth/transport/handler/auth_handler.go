// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"event_backend/internal/api"
	"event_backend/internal/feature/auth/domain/entity"
	"event_backend/internal/feature/auth/usecase"
	platformhttp "event_backend/internal/platform/http"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は指定されたメールアドレス・パスワード・氏名で新規ユーザーを登録します。
	Signup(ctx context.Context, email, password, firstName, lastName string) (*entity.User, error)
	// Login はユーザーを認証し、成功時にトークンとユーザー情報を返します。
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - リクエストJSONをSignupRequestにバインド
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時は作成したユーザーと201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req api.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		platformhttp.BadRequest(c, err.Error())
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), string(req.Email), req.Password, req.FirstName, req.LastName)
	if err != nil {
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		platformhttp.WriteError(c, err)
		return
	}
	slog.Info("user signup successful", "email", user.Email, "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.UserResponse{
		Id:        user.ID,
		Email:     openapi_types.Email(user.Email),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - リクエストJSONをLoginRequestにバインド
// - バリデーションエラー時は400を返却
// - 未登録は404、パスワード不一致は401、無効化されたアカウントは403を返却
// - 認証成功時はJWTトークンとユーザー情報付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		platformhttp.BadRequest(c, "invalid request")
		return
	}
	res, err := h.auth.Login(c.Request.Context(), string(req.Email), req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		platformhttp.WriteError(c, err)
		return
	}
	slog.Info("user login successful", "email", res.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.LoginResponse{
		Token:     res.Token,
		UserId:    res.UserID,
		Email:     openapi_types.Email(res.Email),
		FirstName: res.FirstName,
		LastName:  res.LastName,
		Role:      string(res.Role),
	})
}
