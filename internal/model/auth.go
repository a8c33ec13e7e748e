// internal/model/auth.go
package model

import (
	"github.com/golang-jwt/jwt/v5"
)

// contextKey はコンテキストキーの衝突を避けるための型
type contextKey string

// UserIDKey は認証ミドルウェアがユーザーIDを格納するコンテキストキー
const UserIDKey contextKey = "user_id"

// JWTCustomClaims はJWTに含めるカスタムクレーム（ペイロード）
// トークンの発行は外部の認証基盤が行い、ここでは検証のみを行う。
type JWTCustomClaims struct {
	jwt.RegisteredClaims // 標準クレーム (iss, sub, exp など) を埋め込む
}
