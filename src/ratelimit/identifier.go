package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient 識別子を決められなかったときの値
const UnknownClient = "unknown"

// ClientIdentifier リクエストからクライアント識別子を取り出す
//
// X-Forwarded-For の先頭、X-Real-IP、接続元アドレスの順に使う。
// ヘッダはクライアントが自由に設定できるため、信頼できるプロキシの背後でのみ意味を持つ。
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}

	return UnknownClient
}
