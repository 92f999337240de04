package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
)

// TokenValidator はトークンを検証して subject を返します。
type TokenValidator interface {
	Validate(token string) (string, error)
}

// IdentityResolver はベアラートークンから現在の有効なユーザーを解決します。
// リクエストごとに検証し、結果はキャッシュしません。
type IdentityResolver struct {
	tokens TokenValidator
	users  repositories.UserRepository
}

// NewIdentityResolver は新しいIdentityResolverを作成します。
func NewIdentityResolver(tokens TokenValidator, users repositories.UserRepository) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users}
}

// Resolve はトークンを検証し、subject (メールアドレス) のユーザーを返します。
// トークン不正・ユーザー不在・無効ユーザーはすべて ErrUnauthenticated です。
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	email, err := r.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", ErrUnauthenticated)
	}

	user.HashedPassword = ""
	return user, nil
}
