package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count     int
	resetTime time.Time
}

// MemoryLimiter プロセス内のマップでカウンタを保持するLimiter
//
// 複数プロセスで動かすとそれぞれが独立したカウンタを持つため、
// 共有したい場合は RedisLimiter を使う。
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// MemoryOption MemoryLimiterのオプション
type MemoryOption func(*MemoryLimiter)

// WithClock 現在時刻の取得関数を差し替える（テスト用）
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// NewMemoryLimiter sweepInterval ごとに期限切れのエントリを削除する。0以下なら掃除しない
func NewMemoryLimiter(sweepInterval time.Duration, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if sweepInterval > 0 {
		go l.sweepLoop(sweepInterval)
	} else {
		close(l.done)
	}
	return l
}

// Check 識別子のカウンタを進め、許可されるかを返す
func (l *MemoryLimiter) Check(_ context.Context, identifier string, maxRequests int, windowSize time.Duration) (Result, error) {
	if err := validateArgs(maxRequests, windowSize); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[identifier]
	if !ok || now.After(w.resetTime) {
		w = &window{count: 1, resetTime: now.Add(windowSize)}
		l.windows[identifier] = w
		return Result{Allowed: true, Remaining: maxRequests - 1, ResetTime: w.resetTime}, nil
	}

	if w.count >= maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetTime: w.resetTime}, nil
	}

	w.count++
	return Result{Allowed: true, Remaining: maxRequests - w.count, ResetTime: w.resetTime}, nil
}

// Sweep 期限切れのエントリを削除し、削除件数を返す
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, w := range l.windows {
		if now.After(w.resetTime) {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

// Len 保持しているエントリ数
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Close 掃除用のgoroutineを停止する
func (l *MemoryLimiter) Close() error {
	l.closeOnce.Do(func() {
		close(l.stop)
	})
	<-l.done
	return nil
}

func (l *MemoryLimiter) sweepLoop(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-l.stop:
			return
		}
	}
}
