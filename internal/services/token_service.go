package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JulianRp2177/api-task-manager/internal/config"
)

// TokenService は署名付きで有効期限のあるベアラートークンの発行と検証を扱います。
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService は設定から新しいTokenServiceを作成します。
func NewTokenService(cfg *config.Config) (*TokenService, error) {
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("signing secret is empty")
	}
	return &TokenService{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenTTL,
		now:    time.Now,
	}, nil
}

// Issue は既定の有効期限でトークンを発行します。
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL は subject を sub クレームに持ち、now+ttl で失効するトークンを発行します。
// ttl が0なら既定の有効期限を使います。
func (s *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.ttl
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(s.method, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return tokenString, nil
}

// Validate は署名と有効期限を検証し、subject を返します。
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
