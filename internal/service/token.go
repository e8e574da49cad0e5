package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeReadCredentials разрешает читать пользователя вместе с хэшем пароля.
const ScopeReadCredentials = "users:read_credentials"

// ServiceTokenManager отвечает за выпуск и проверку сервисных JWT.
// Ими авторизуются доверенные внутренние сервисы (например, auth-сервис,
// которому нужен хэш пароля по email).
type ServiceTokenManager struct {
	secret []byte
}

// NewServiceTokenManager создаёт менеджер сервисных токенов.
func NewServiceTokenManager(secret string) *ServiceTokenManager {
	return &ServiceTokenManager{secret: []byte(secret)}
}

// Issue выпускает токен для сервиса subject с заданным scope.
func (m *ServiceTokenManager) Issue(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": scope,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse проверяет токен и возвращает subject и scope.
func (m *ServiceTokenManager) Parse(token string) (subject, scope string, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	if !parsed.Valid {
		return "", "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrTokenInvalidClaims
	}

	subject, _ = claims["sub"].(string)
	scope, _ = claims["scope"].(string)
	if subject == "" {
		return "", "", jwt.ErrTokenInvalidClaims
	}

	return subject, scope, nil
}
