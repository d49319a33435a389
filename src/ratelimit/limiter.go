package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidLimit 上限または期間が不正
var ErrInvalidLimit = errors.New("ratelimit: maxRequests and window must be positive")

// Result レート制限チェックの結果
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

// RetryAfter 次にリクエスト可能になるまでの時間（秒単位で切り上げ、最小1秒）
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetTime.Sub(now)
	if d <= 0 {
		return time.Second
	}
	return d.Truncate(time.Second) + time.Second
}

// Limiter 識別子ごとの固定ウィンドウ方式レート制限
//
// 各ウィンドウの最初のリクエストでカウンタを1にし、ResetTime = now + window とする。
// カウンタが maxRequests に達した後のリクエストは拒否する。ResetTime を過ぎると
// 無条件に新しいウィンドウが始まる。
type Limiter interface {
	Check(ctx context.Context, identifier string, maxRequests int, window time.Duration) (Result, error)
	Close() error
}

func validateArgs(maxRequests int, window time.Duration) error {
	if maxRequests < 1 || window <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
