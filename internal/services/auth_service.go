package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
)

// TokenIssuer は subject 用のトークンを発行します。
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// AuthService はユーザー登録とログインを扱います。
type AuthService struct {
	users  repositories.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer

	// dummyDigest は存在しないメールでのログイン時にも検証を行うためのハッシュです。
	dummyDigest string
}

// maxPasswordBytes はbcryptが扱えるパスワードの最大バイト数です。
const maxPasswordBytes = 72

// NewAuthService は新しいAuthServiceを作成します。
func NewAuthService(users repositories.UserRepository, hasher PasswordHasher, tokens TokenIssuer) (*AuthService, error) {
	dummy, err := hasher.Hash("task-manager-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy password digest: %w", err)
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, dummyDigest: dummy}, nil
}

// Register はユーザーを登録します。メールアドレスが既に使われていれば ErrDuplicateEmail。
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return nil, err
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	created.HashedPassword = "" // レスポンスにハッシュを含めない
	return created, nil
}

// Login はユーザーを認証し、成功したらアクセストークンを返します。
// ユーザー不在とパスワード不一致はどちらも ErrInvalidCredentials です。
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AccessToken, error) {
	if len(password) > maxPasswordBytes {
		// 登録時に拒否しているので一致するユーザーは存在しない
		_, _ = s.hasher.Verify(password[:maxPasswordBytes], s.dummyDigest)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// 応答時間を揃えるため、存在しない場合もハッシュ検証を行う
			_, _ = s.hasher.Verify(password, s.dummyDigest)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.HashedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		log.Printf("Failed to generate JWT token: %v", err)
		return nil, err
	}
	return &models.AccessToken{AccessToken: token, TokenType: models.TokenTypeBearer}, nil
}
