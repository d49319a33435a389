package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"resource-share/src/config"
	"resource-share/src/logger"
	"resource-share/src/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginThrottled     = errors.New("too many login attempts")
)

// ThrottledError ログイン試行の上限超過。errors.Is(err, ErrLoginThrottled) が成り立つ
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%v: retry after %s", ErrLoginThrottled, e.RetryAfter)
}

func (e *ThrottledError) Unwrap() error {
	return ErrLoginThrottled
}

// ログイン試行の既定値（クライアントごとに5回まで、その後12秒ごとに1回回復）
const (
	defaultLoginBurst    = 5
	defaultLoginInterval = 12 * time.Second
)

// LoginResult ログイン成功時に返すトークン
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminAuthService 管理者認証サービスのインターフェース
type AdminAuthService interface {
	Login(email, password, clientID string) (*LoginResult, error)
	ValidateToken(tokenString string) (*AdminClaims, error)
	Close() error
}

// adminAuthService 管理者認証サービスの実装
type adminAuthService struct {
	email        string
	password     string
	passwordHash string
	jwtService   JWTService
	log          *logrus.Logger
	metrics      *metrics.Recorder

	throttle      *LoginThrottle
	every         time.Duration
	burst         int
	sweepInterval time.Duration
}

// AuthOption 管理者認証サービスのオプション
type AuthOption func(*adminAuthService)

// WithLoginRate クライアントごとのログイン試行レートを指定
func WithLoginRate(every time.Duration, burst int) AuthOption {
	return func(s *adminAuthService) {
		s.every = every
		s.burst = burst
	}
}

// WithThrottleSweep 試行履歴を掃除する間隔を指定（0以下で無効）
func WithThrottleSweep(interval time.Duration) AuthOption {
	return func(s *adminAuthService) {
		s.sweepInterval = interval
	}
}

// NewAdminAuthService 管理者認証サービスを作成
func NewAdminAuthService(cfg config.AuthConfig, jwtService JWTService, log *logrus.Logger, rec *metrics.Recorder, opts ...AuthOption) AdminAuthService {
	s := &adminAuthService{
		email:        strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		password:     cfg.AdminPassword,
		passwordHash: cfg.AdminPasswordHash,
		jwtService:   jwtService,
		log:          log,
		metrics:      rec,
		every:         defaultLoginInterval,
		burst:         defaultLoginBurst,
		sweepInterval: DefaultThrottleSweepInterval,
	}
	if s.log == nil {
		s.log = logger.Log
	}
	for _, opt := range opts {
		opt(s)
	}
	s.throttle = NewLoginThrottle(s.every, s.burst, s.sweepInterval)
	return s
}

// Login 資格情報を検証してトークンを発行する。管理者が未設定の場合は常に失敗する
func (s *adminAuthService) Login(email, password, clientID string) (*LoginResult, error) {
	if !s.throttle.Allow(clientID) {
		s.log.WithField("client_id", clientID).Warn("ログイン試行回数の上限に達しました")
		s.metrics.LoginAttempt("throttled")
		return nil, &ThrottledError{RetryAfter: s.throttle.RetryAfter()}
	}

	if !s.configured() {
		s.log.Warn("管理者アカウントが設定されていないためログインできません")
		s.metrics.LoginAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(s.email)) == 1
	passwordOK := s.checkPassword(password)
	if !emailOK || !passwordOK {
		s.log.WithField("client_id", clientID).Warn("管理者ログインに失敗しました")
		s.metrics.LoginAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.GenerateAdminToken(s.email)
	if err != nil {
		s.log.WithError(err).Error("トークンの生成に失敗しました")
		return nil, err
	}

	s.log.WithField("client_id", clientID).Info("管理者がログインしました")
	s.metrics.LoginAttempt("success")
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken 管理者トークンを検証
func (s *adminAuthService) ValidateToken(tokenString string) (*AdminClaims, error) {
	return s.jwtService.ValidateToken(tokenString)
}

func (s *adminAuthService) configured() bool {
	return s.email != "" && (s.passwordHash != "" || s.password != "")
}

// checkPassword ハッシュが設定されていればbcrypt、なければ定数時間比較
func (s *adminAuthService) checkPassword(password string) bool {
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

// Close ログイン試行履歴の掃除を停止する
func (s *adminAuthService) Close() error {
	return s.throttle.Close()
}
