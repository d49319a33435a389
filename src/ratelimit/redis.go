package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 最初のINCRでのみ有効期限を設定し、カウンタと残りTTL(ms)を返す
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter Redisにカウンタを置き、複数プロセスで制限を共有するLimiter
type RedisLimiter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisLimiter prefix はキーの接頭辞（空なら "ratelimit:"）
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisLimiter{client: client, prefix: prefix, now: time.Now}
}

// Check MemoryLimiterと同じ固定ウィンドウ方式で判定する
//
// 上限超過後もINCRは進むが、ウィンドウの期限はリセットされない。
func (l *RedisLimiter) Check(ctx context.Context, identifier string, maxRequests int, window time.Duration) (Result, error) {
	if err := validateArgs(maxRequests, window); err != nil {
		return Result{}, err
	}

	key := l.prefix + identifier
	raw, err := fixedWindowScript.Run(ctx, l.client, []string{key}, window.Milliseconds()).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis check failed: %w", err)
	}

	count, ttlMillis, ok := parseScriptResult(raw)
	if !ok {
		return Result{}, fmt.Errorf("ratelimit: unexpected script result %v", raw)
	}

	ttl := time.Duration(ttlMillis) * time.Millisecond
	result := Result{
		Allowed:   count <= maxRequests,
		Remaining: maxRequests - count,
		ResetTime: l.now().Add(ttl),
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	return result, nil
}

func parseScriptResult(raw []interface{}) (int, int64, bool) {
	if len(raw) != 2 {
		return 0, 0, false
	}
	count, ok1 := raw[0].(int64)
	ttl, ok2 := raw[1].(int64)
	return int(count), ttl, ok1 && ok2
}

// Close クライアントの所有者は呼び出し側なので何もしない
func (l *RedisLimiter) Close() error {
	return nil
}
