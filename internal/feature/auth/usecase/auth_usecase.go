// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"event_backend/internal/feature/auth/domain/entity"
	"event_backend/internal/shared/identity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
)

// dummyHash はユーザーが存在しない場合のタイミング攻撃緩和用のbcryptハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// Save は既存ユーザーのロールと有効フラグを更新します。
	Save(ctx context.Context, user *entity.User) error

	// FindByEmail は大文字小文字を区別せずにメールアドレスでユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// ExistsByEmail は大文字小文字を区別せずにメールアドレスの存在を確認します。
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenIssuer はJWTトークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// IssueFor は指定されたユーザーの署名済みトークンを設定済みの有効期間で発行します。
	IssueFor(email string, userID uint, role identity.Role) (string, error)
}

// WelcomeNotifier はサインアップ完了の通知を非同期で送信します。
type WelcomeNotifier interface {
	NotifyWelcome(email, firstName string)
}

// LoginResult はログイン成功時に返される情報です。
type LoginResult struct {
	Token     string
	UserID    uint
	Email     string
	FirstName string
	LastName  string
	Role      identity.Role
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	tokens   TokenIssuer
	notifier WelcomeNotifier
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, notifier WelcomeNotifier) *authUsecase {
	return &authUsecase{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
// メールアドレスは小文字に正規化して保存し、重複は大文字小文字を区別せずに判定します。
func (u *authUsecase) Signup(ctx context.Context, email, password, firstName, lastName string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if firstName == "" || lastName == "" {
		return nil, ErrNameRequired
	}
	// パスワード強度を検証
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: firstName,
		LastName:  lastName,
		Role:      identity.RoleUser,
		Active:    true,
	}
	// 同時サインアップはユニーク制約でErrEmailAlreadyExistsになる
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.notifier.NotifyWelcome(user.Email, user.FirstName)
	return user, nil
}

// Login はユーザーを認証し、成功時にトークンとユーザー情報を返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil {
		return nil, ErrUserNotFound
	}
	if compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	token, err := u.tokens.IssueFor(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}, nil
}

// SetRole はメールアドレスで指定したユーザーのロールを変更します。管理CLIから使用します。
func (u *authUsecase) SetRole(ctx context.Context, email, roleName string) (*entity.User, error) {
	role, ok := identity.ParseRole(roleName)
	if !ok {
		return nil, ErrInvalidRole
	}
	user, err := u.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := u.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	slog.Info("user role changed", "user_id", user.ID, "role", role)
	return user, nil
}

// SetActive はメールアドレスで指定したユーザーを有効化または無効化します。管理CLIから使用します。
func (u *authUsecase) SetActive(ctx context.Context, email string, active bool) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	user.Active = active
	if err := u.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	slog.Info("user active flag changed", "user_id", user.ID, "active", active)
	return user, nil
}
