package dashboard

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/infra/auth"
)

// AuthService выдаёт токены доступа к дашборду. Учётные записи просмотра
// задаются конфигом как пары логин -> bcrypt-хэш: открытый пароль не хранится
// нигде, ни на сервере, ни тем более на клиенте.
type AuthService struct {
	*auth.BaseValidator
	viewers    map[string]string
	privateKey *rsa.PrivateKey
	tokenTTL   time.Duration
}

func NewAuthService(viewers map[string]string, privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		BaseValidator: auth.NewBaseValidator(publicKey),
		viewers:       viewers,
		privateKey:    privateKey,
		tokenTTL:      tokenTTL,
	}
}

// GenerateToken проверяет пару логин/пароль и подписывает JWT (RS256).
func (s *AuthService) GenerateToken(username, password string) (*domain.TokenResponse, error) {
	hash, ok := s.viewers[username]
	if !ok {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := &domain.ViewerClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "revitmon-dashboard",
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(s.privateKey)
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{
		AccessToken: signedToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}
