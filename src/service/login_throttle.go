package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultThrottleSweepInterval 使われなくなったクライアントを掃除する間隔
const DefaultThrottleSweepInterval = 5 * time.Minute

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginThrottle クライアントごとのトークンバケット
//
// 最後の試行から every*burst 以上経過したエントリはバケットが満杯に戻っているため、
// 削除しても判定は変わらない。
type LoginThrottle struct {
	mu      sync.Mutex
	clients map[string]*throttleEntry
	every   time.Duration
	burst   int
	idle    time.Duration
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// ThrottleOption LoginThrottleのオプション
type ThrottleOption func(*LoginThrottle)

// WithThrottleClock 現在時刻の取得関数を差し替える（テスト用）
func WithThrottleClock(now func() time.Time) ThrottleOption {
	return func(t *LoginThrottle) {
		t.now = now
	}
}

// NewLoginThrottle every ごとに1回回復し、最大 burst 回まで連続で許可する。
// sweepInterval が0以下なら掃除用のgoroutineは起動しない
func NewLoginThrottle(every time.Duration, burst int, sweepInterval time.Duration, opts ...ThrottleOption) *LoginThrottle {
	t := &LoginThrottle{
		clients: make(map[string]*throttleEntry),
		every:   every,
		burst:   burst,
		idle:    every * time.Duration(burst),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	if sweepInterval > 0 {
		go t.sweepLoop(sweepInterval)
	} else {
		close(t.done)
	}
	return t
}

// Allow 試行を1回消費する
func (t *LoginThrottle) Allow(clientID string) bool {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.clients[clientID]
	if !exists {
		entry = &throttleEntry{limiter: rate.NewLimiter(rate.Every(t.every), t.burst)}
		t.clients[clientID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// RetryAfter 次の試行が回復するまでの間隔
func (t *LoginThrottle) RetryAfter() time.Duration {
	return t.every
}

// Sweep 満杯に戻ったエントリを削除し、削除した数を返す
func (t *LoginThrottle) Sweep() int {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, entry := range t.clients {
		if now.Sub(entry.lastSeen) >= t.idle {
			delete(t.clients, id)
			removed++
		}
	}
	return removed
}

// Len 保持しているクライアント数
func (t *LoginThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// Close 掃除用のgoroutineを停止する
func (t *LoginThrottle) Close() error {
	t.closeOnce.Do(func() {
		close(t.stop)
	})
	<-t.done
	return nil
}

func (t *LoginThrottle) sweepLoop(interval time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Sweep()
		case <-t.stop:
			return
		}
	}
}
