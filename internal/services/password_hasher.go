package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt" // パスワードのハッシュ化用
)

// PasswordHasher はパスワードのハッシュ化と検証を抽象化します。
type PasswordHasher interface {
	// Hash はソルト付きのハッシュを生成します。
	Hash(password string) (string, error)
	// Verify は一致すれば true を返します。不一致はエラーではなく false です。
	Verify(password, digest string) (bool, error)
}

// BcryptHasher はbcryptによるPasswordHasherです。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は指定コストのBcryptHasherを作成します。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は与えられたパスワードをbcryptでハッシュ化します。
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify はハッシュ化されたパスワードと平文のパスワードを比較します。
// 壊れたハッシュの場合のみエラーを返します。
func (h *BcryptHasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("malformed password digest: %w", err)
	}
}
