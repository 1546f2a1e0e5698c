// Package notification はユーザーへのメール通知を非同期で送信します。
//
// 通知はベストエフォートです。キューが満杯の場合は破棄し、送信失敗は
// ログとメトリクスに記録するだけで呼び出し元には返しません。
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"event_backend/internal/platform/mailer"
	"event_backend/internal/shared/ratelimiter"
)

// 通知の種別。メトリクスのラベルにも使用します。
const (
	KindWelcome      = "welcome"
	KindConfirmation = "confirmation"
	KindReminder     = "reminder"
)

// 送信結果。
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
)

// Mailer はメール1通を送信します。
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Recorder は通知の結果を記録します（メトリクス用）。
type Recorder interface {
	ObserveNotification(kind, result string)
	SetQueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveNotification(string, string) {}
func (nopRecorder) SetQueueDepth(int)                  {}

// Options はDispatcherの設定です。
type Options struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
	Limiter     ratelimiter.Limiter
	Recorder    Recorder
}

type job struct {
	kind string
	msg  mailer.Message
}

// Dispatcher はキューに積まれた通知をワーカーgoroutineで送信します。
// Notify系メソッドはブロックしません。
type Dispatcher struct {
	mailer  Mailer
	limiter ratelimiter.Limiter
	rec     Recorder
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan job
}

// NewDispatcher はDispatcherを生成します。送信はRunを呼ぶまで開始されません。
func NewDispatcher(m Mailer, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimiter.NewRateLimiter(0, 1)
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Dispatcher{
		mailer:  m,
		limiter: opts.Limiter,
		rec:     opts.Recorder,
		workers: opts.Workers,
		timeout: opts.SendTimeout,
		queue:   make(chan job, opts.QueueSize),
	}
}

// NotifyWelcome はサインアップ直後の歓迎メールをキューに積みます。
func (d *Dispatcher) NotifyWelcome(email, firstName string) {
	d.enqueue(KindWelcome, welcomeMessage(email, firstName))
}

// NotifyRegistrationConfirmed はイベント登録の確認メールをキューに積みます。
func (d *Dispatcher) NotifyRegistrationConfirmed(email, firstName, eventTitle string) {
	d.enqueue(KindConfirmation, confirmationMessage(email, firstName, eventTitle))
}

// NotifyEventReminder はイベント開催前のリマインダーをキューに積みます。
func (d *Dispatcher) NotifyEventReminder(email, firstName, eventTitle string, eventDate time.Time) {
	d.enqueue(KindReminder, reminderMessage(email, firstName, eventTitle, eventDate))
}

func (d *Dispatcher) enqueue(kind string, msg mailer.Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.Warn("notification dropped: dispatcher stopped", "kind", kind, "to", msg.To)
		d.rec.ObserveNotification(kind, ResultDropped)
		return
	}
	select {
	case d.queue <- job{kind: kind, msg: msg}:
		d.rec.SetQueueDepth(len(d.queue))
	default:
		slog.Warn("notification dropped: queue full", "kind", kind, "to", msg.To)
		d.rec.ObserveNotification(kind, ResultDropped)
	}
}

// Run はワーカーを起動し、ctxがキャンセルされるまでブロックします。
// キャンセル後は新しい通知を受け付けず、キューに残った通知を送信してから戻ります。
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	sendCtx := context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range d.queue {
				d.rec.SetQueueDepth(len(d.queue))
				d.send(sendCtx, j)
			}
		}()
	}

	<-ctx.Done()
	d.close()
	wg.Wait()
	return nil
}

func (d *Dispatcher) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
}

func (d *Dispatcher) send(ctx context.Context, j job) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("mailer panic: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		return d.mailer.Send(ctx, j.msg)
	}()

	if err != nil {
		slog.Warn("failed to send notification", "kind", j.kind, "to", j.msg.To, "error", err)
		d.rec.ObserveNotification(j.kind, ResultFailed)
		return
	}
	slog.Info("notification sent", "kind", j.kind, "to", j.msg.To)
	d.rec.ObserveNotification(j.kind, ResultSent)
}
