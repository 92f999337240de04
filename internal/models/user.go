package models

// User はユーザーのデータベース構造体を表します。
// JSONタグ: クライアントとの通信用
// bindingタグ: Ginでのリクエストバリデーション用
type User struct {
	ID             int    `json:"id"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"` // JSONに出さない
	IsActive       bool   `json:"is_active"`
}

type UserRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"` // 生パスワード (bcryptの上限72バイト)
}

// UserLoginRequest はOAuth2のパスワードフォーム (username, password) を受け取ります。
// username にはメールアドレスを指定します。
type UserLoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// AccessToken はログイン成功時のレスポンスです。
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenTypeBearer はレスポンスで返すトークン種別です。
const TokenTypeBearer = "bearer"
