package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authentity "event_backend/internal/feature/auth/domain/entity"
	evententity "event_backend/internal/feature/events/domain/entity"
	"event_backend/internal/feature/registration/domain/entity"
	"event_backend/internal/shared/apperr"
)

// Tx は1つのトランザクション内で実行される登録操作です。
// LockEventで取得したイベント行のロックはトランザクション終了まで保持されます。
type Tx interface {
	// LockEvent はイベント行を排他ロックして取得します。存在しない場合はErrEventNotFoundを返します。
	LockEvent(ctx context.Context, eventID uint) (*evententity.Event, error)

	// FindByEventAndUser は登録を取得します。存在しない場合はErrRegistrationNotFoundを返します。
	FindByEventAndUser(ctx context.Context, eventID, userID uint) (*entity.Registration, error)

	// Save は登録を作成または更新します。(event, user)の重複はErrAlreadyRegisteredになります。
	Save(ctx context.Context, r *entity.Registration) error

	// IncrementRegistered はregistered_count < capacityの場合のみ1増やします。満席ならErrEventFullを返します。
	IncrementRegistered(ctx context.Context, eventID uint) error

	// DecrementRegistered はregistered_countを1減らします。0未満にはなりません。
	DecrementRegistered(ctx context.Context, eventID uint) error

	// SetRegisteredCount はregistered_countを指定値に設定します。
	SetRegisteredCount(ctx context.Context, eventID uint, n int) error

	// CountActive はREGISTEREDまたはATTENDEDの登録数を数えます。
	CountActive(ctx context.Context, eventID uint) (int64, error)

	// CreateAttendance は出席記録を作成します。重複はErrAlreadyAttendedになります。
	CreateAttendance(ctx context.Context, a *entity.Attendance) error
}

// Store は登録・出席の永続化層を抽象化します。
type Store interface {
	// WithinTx はfnを1つのトランザクションで実行します。fnがエラーを返すとロールバックします。
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	FindByEventAndUser(ctx context.Context, eventID, userID uint) (*entity.Registration, error)

	// FindByUser はユーザーの全登録をイベント情報付きで返します。
	FindByUser(ctx context.Context, userID uint) ([]UserRegistration, error)

	// FindByEvent はイベントの登録を参加者情報付きで返します。statusesが空なら全件です。
	FindByEvent(ctx context.Context, eventID uint, statuses ...entity.Status) ([]EventRegistrant, error)

	CountActiveByEvent(ctx context.Context, eventID uint) (int64, error)

	MarkConfirmationSent(ctx context.Context, registrationID uint, at time.Time) error

	// FindAttendance は出席記録を取得します。存在しない場合はErrAttendanceNotFoundを返します。
	FindAttendance(ctx context.Context, eventID, userID uint) (*entity.Attendance, error)

	FindAttendanceByEvent(ctx context.Context, eventID uint) ([]entity.Attendance, error)

	CountAttendanceByEvent(ctx context.Context, eventID uint) (int64, error)
}

// EventFinder はイベントの参照に使用します。
type EventFinder interface {
	FindByID(ctx context.Context, id uint) (*evententity.Event, error)
	FindUpcoming(ctx context.Context, now time.Time) ([]evententity.Event, error)
}

// UserFinder はユーザーの参照に使用します。
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*authentity.User, error)
}

// Notifier は登録関連の通知を非同期で送信します。呼び出しはブロックせず、失敗は呼び出し元に返りません。
type Notifier interface {
	NotifyRegistrationConfirmed(email, firstName, eventTitle string)
	NotifyEventReminder(email, firstName, eventTitle string, eventDate time.Time)
}

// EventInvalidator はイベント一覧のキャッシュを破棄します。
type EventInvalidator interface {
	InvalidateEvents(ctx context.Context) error
}

// Recorder は操作結果を記録します（メトリクス用）。
type Recorder interface {
	ObserveRegistration(op string, err error)
}

// UserRegistration はユーザー視点の登録一覧の1行です。
type UserRegistration struct {
	entity.Registration
	EventTitle  string
	EventDate   time.Time
	EventActive bool
}

// EventRegistrant はイベント視点の登録一覧の1行です。
type EventRegistrant struct {
	entity.Registration
	Email     string
	FirstName string
	LastName  string
}

// ReconcileReport は保存されたカウンタと登録数から導出した値の比較結果です。
type ReconcileReport struct {
	EventID  uint
	Stored   int
	Derived  int
	Repaired bool
}

// Consistent reports whether the stored counter matches the registrations.
func (r ReconcileReport) Consistent() bool {
	return r.Stored == r.Derived
}

// Option はregistrationUsecaseの任意の依存を設定します。
type Option func(*registrationUsecase)

// WithEventInvalidator はカウンタ変更後にイベント一覧キャッシュを破棄するよう設定します。
func WithEventInvalidator(inv EventInvalidator) Option {
	return func(u *registrationUsecase) { u.invalidator = inv }
}

// WithRecorder は操作結果の記録先を設定します。
func WithRecorder(rec Recorder) Option {
	return func(u *registrationUsecase) { u.recorder = rec }
}

// registrationUsecase は登録のステートマシンを実装します。
type registrationUsecase struct {
	store       Store
	events      EventFinder
	users       UserFinder
	notifier    Notifier
	invalidator EventInvalidator
	recorder    Recorder
	now         func() time.Time
}

// NewRegistrationUsecase はregistrationUsecaseの新しいインスタンスを生成します。
func NewRegistrationUsecase(store Store, events EventFinder, users UserFinder, notifier Notifier, opts ...Option) *registrationUsecase {
	u := &registrationUsecase{
		store:    store,
		events:   events,
		users:    users,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// loadEvent はイベントを取得します。requireActiveがtrueなら非アクティブなイベントもNotFoundとします。
func (u *registrationUsecase) loadEvent(ctx context.Context, eventID uint, requireActive bool) (*evententity.Event, error) {
	e, err := u.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if requireActive && !e.Active {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (u *registrationUsecase) loadUser(ctx context.Context, userID uint) (*authentity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Register はユーザーをイベントに登録します。
// 重複チェック・定員チェック・カウンタ更新・登録行の書き込みは、イベント行をロックした1つのトランザクションで行います。
// CANCELLEDの登録がある場合は同じ行をREGISTEREDに戻します。
func (u *registrationUsecase) Register(ctx context.Context, eventID, userID uint) (reg *entity.Registration, err error) {
	defer func() { u.observe("register", err) }()

	if _, err := u.loadEvent(ctx, eventID, true); err != nil {
		return nil, err
	}
	user, err := u.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var title string
	err = u.store.WithinTx(ctx, func(tx Tx) error {
		event, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.Active {
			return ErrEventNotFound
		}
		title = event.Title

		existing, err := tx.FindByEventAndUser(ctx, eventID, userID)
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			existing = &entity.Registration{EventID: eventID, UserID: userID}
		case err != nil:
			return err
		case existing.Status.HoldsSeat():
			return ErrAlreadyRegistered
		}

		if event.IsFull() {
			return ErrEventFull
		}
		if err := tx.IncrementRegistered(ctx, eventID); err != nil {
			return err
		}

		existing.Status = entity.StatusRegistered
		existing.RegisteredAt = u.now()
		existing.ConfirmationSentAt = nil
		if err := tx.Save(ctx, existing); err != nil {
			return err
		}
		reg = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered for event", "event_id", eventID, "user_id", userID, "registration_id", reg.ID)
	u.invalidate(ctx)

	u.notifier.NotifyRegistrationConfirmed(user.Email, user.FirstName, title)
	sentAt := u.now()
	if err := u.store.MarkConfirmationSent(ctx, reg.ID, sentAt); err != nil {
		slog.Warn("failed to record confirmation", "registration_id", reg.ID, "error", err)
	} else {
		reg.ConfirmationSentAt = &sentAt
	}

	return reg, nil
}

// Cancel は登録をキャンセルし、カウンタを1減らします。
// REGISTERED以外の登録に対しては何もせず成功します（二重キャンセルでカウンタは減りません）。
func (u *registrationUsecase) Cancel(ctx context.Context, eventID, userID uint) (err error) {
	defer func() { u.observe("cancel", err) }()

	if _, err := u.loadEvent(ctx, eventID, false); err != nil {
		return err
	}
	if _, err := u.loadUser(ctx, userID); err != nil {
		return err
	}

	changed := false
	err = u.store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.LockEvent(ctx, eventID); err != nil {
			return err
		}
		reg, err := tx.FindByEventAndUser(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if reg.Status != entity.StatusRegistered {
			return nil
		}

		reg.Status = entity.StatusCancelled
		if err := tx.Save(ctx, reg); err != nil {
			return err
		}
		if err := tx.DecrementRegistered(ctx, eventID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		slog.Info("user cancelled registration", "event_id", eventID, "user_id", userID)
		u.invalidate(ctx)
	}
	return nil
}

// MarkAttended はREGISTEREDの登録をATTENDEDにし、出席記録を1件作成します。
func (u *registrationUsecase) MarkAttended(ctx context.Context, eventID, userID uint) (att *entity.Attendance, err error) {
	defer func() { u.observe("attend", err) }()

	if _, err := u.loadEvent(ctx, eventID, false); err != nil {
		return nil, err
	}
	if _, err := u.loadUser(ctx, userID); err != nil {
		return nil, err
	}

	err = u.store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.LockEvent(ctx, eventID); err != nil {
			return err
		}
		reg, err := tx.FindByEventAndUser(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if reg.Status != entity.StatusRegistered {
			return ErrNotRegistered
		}

		reg.Status = entity.StatusAttended
		if err := tx.Save(ctx, reg); err != nil {
			return err
		}
		a := &entity.Attendance{EventID: eventID, UserID: userID, CheckedInAt: u.now()}
		if err := tx.CreateAttendance(ctx, a); err != nil {
			return err
		}
		att = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user marked as attended", "event_id", eventID, "user_id", userID)
	return att, nil
}

// ListForUser はユーザーの登録一覧を返します。
func (u *registrationUsecase) ListForUser(ctx context.Context, userID uint) ([]UserRegistration, error) {
	if _, err := u.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	regs, err := u.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}

// ListForEvent はイベントの登録一覧を返します。非アクティブなイベントも対象です。
func (u *registrationUsecase) ListForEvent(ctx context.Context, eventID uint, statuses ...entity.Status) ([]EventRegistrant, error) {
	for _, s := range statuses {
		if !s.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	if _, err := u.loadEvent(ctx, eventID, false); err != nil {
		return nil, err
	}
	regs, err := u.store.FindByEvent(ctx, eventID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}

// ListAttendance はイベントの出席記録を返します。
func (u *registrationUsecase) ListAttendance(ctx context.Context, eventID uint) ([]entity.Attendance, error) {
	if _, err := u.loadEvent(ctx, eventID, false); err != nil {
		return nil, err
	}
	out, err := u.store.FindAttendanceByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return out, nil
}

// GetAttendance はユーザーの出席記録を返します。
func (u *registrationUsecase) GetAttendance(ctx context.Context, eventID, userID uint) (*entity.Attendance, error) {
	if _, err := u.loadEvent(ctx, eventID, false); err != nil {
		return nil, err
	}
	return u.store.FindAttendance(ctx, eventID, userID)
}

// AttendanceCount はイベントの出席者数を返します。
func (u *registrationUsecase) AttendanceCount(ctx context.Context, eventID uint) (int64, error) {
	if _, err := u.loadEvent(ctx, eventID, false); err != nil {
		return 0, err
	}
	return u.store.CountAttendanceByEvent(ctx, eventID)
}

// Reconcile は保存されたregistered_countと、REGISTERED/ATTENDEDの登録数を比較します。
// repairがtrueで不一致の場合、イベント行をロックしてカウンタを導出値に合わせます。
func (u *registrationUsecase) Reconcile(ctx context.Context, eventID uint, repair bool) (ReconcileReport, error) {
	report := ReconcileReport{EventID: eventID}
	err := u.store.WithinTx(ctx, func(tx Tx) error {
		event, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			return err
		}
		derived, err := tx.CountActive(ctx, eventID)
		if err != nil {
			return err
		}
		report.Stored = event.RegisteredCount
		report.Derived = int(derived)

		if repair && !report.Consistent() {
			if err := tx.SetRegisteredCount(ctx, eventID, report.Derived); err != nil {
				return err
			}
			report.Repaired = true
		}
		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	if !report.Consistent() {
		slog.Warn("registered count drift detected",
			"event_id", eventID, "stored", report.Stored, "derived", report.Derived, "repaired", report.Repaired)
		if report.Repaired {
			u.invalidate(ctx)
		}
	}
	return report, nil
}

// SendReminders はwindow内に開催されるアクティブなイベントのREGISTEREDユーザーにリマインダーを送信します。
// キューに渡したリマインダーの件数を返します。
func (u *registrationUsecase) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}
	now := u.now()
	events, err := u.events.FindUpcoming(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to load upcoming events: %w", err)
	}

	until := now.Add(window)
	sent := 0
	for _, e := range events {
		if e.EventDate.After(until) {
			continue
		}
		regs, err := u.store.FindByEvent(ctx, e.ID, entity.StatusRegistered)
		if err != nil {
			return sent, fmt.Errorf("failed to load registrants for event %d: %w", e.ID, err)
		}
		for _, r := range regs {
			u.notifier.NotifyEventReminder(r.Email, r.FirstName, e.Title, e.EventDate)
			sent++
		}
	}

	slog.Info("event reminders queued", "count", sent, "window", window.String())
	return sent, nil
}

func (u *registrationUsecase) invalidate(ctx context.Context) {
	if u.invalidator == nil {
		return
	}
	if err := u.invalidator.InvalidateEvents(ctx); err != nil {
		slog.Warn("event cache invalidation failed", "error", err)
	}
}

func (u *registrationUsecase) observe(op string, err error) {
	if u.recorder != nil {
		u.recorder.ObserveRegistration(op, err)
	}
}
