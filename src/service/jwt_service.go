package service

import (
	"errors"
	"fmt"
	"time"

	"resource-share/src/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "resource-share"
	roleAdmin   = "admin"
)

// ErrInvalidToken トークンが不正・期限切れ・権限外
var ErrInvalidToken = errors.New("invalid token")

// AdminClaims JWT内のカスタムクレーム
type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService JWT管理サービスのインターフェース
type JWTService interface {
	GenerateAdminToken(email string) (string, time.Time, error)
	ValidateToken(tokenString string) (*AdminClaims, error)
}

// jwtService JWT管理サービスの実装
type jwtService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewJWTService JWT管理サービスを作成
func NewJWTService(cfg config.AuthConfig) JWTService {
	expiresIn := cfg.JWTExpiresIn
	if expiresIn <= 0 {
		expiresIn = 12 * time.Hour
	}
	return &jwtService{
		secret:    []byte(cfg.JWTSecret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// GenerateAdminToken 管理者用アクセストークンと有効期限を返す
func (s *jwtService) GenerateAdminToken(email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiresIn)

	claims := &AdminClaims{
		Email: email,
		Role:  roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   "admin:" + email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken アクセストークンを検証
func (s *jwtService) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		if claims.Role != roleAdmin {
			return nil, fmt.Errorf("%w: unexpected role %q", ErrInvalidToken, claims.Role)
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
