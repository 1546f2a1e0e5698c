// Package ratelimiter は外部サービス呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter は、メール送信などの操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter はトークンバケットで操作の頻度を制限します。
type RateLimiter struct {
	l *rate.Limiter
}

// NewRateLimiter は1秒あたりperSecond回、最大burst回まで連続で許可するRateLimiterを生成します。
// perSecondが0以下の場合は制限しません。
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{l: rate.NewLimiter(limit, burst)}
}

// Wait は次の操作が許可されるまで待機します。ctxがキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.l.Wait(ctx)
}
