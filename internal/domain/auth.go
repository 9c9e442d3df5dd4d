package domain

import "github.com/golang-jwt/jwt/v5"

// ViewerClaims — полезная нагрузка JWT для доступа к дашборду.
type ViewerClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Secure Token Issuing
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}
