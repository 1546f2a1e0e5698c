// Package adapters はregistrationフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	evententity "event_backend/internal/feature/events/domain/entity"
	"event_backend/internal/feature/registration/domain/entity"
	"event_backend/internal/feature/registration/usecase"
	"event_backend/internal/platform/db"
)

// registrationGorm はStoreインターフェースのGORM実装です。
type registrationGorm struct {
	db *gorm.DB
}

// registrationGormがStoreを実装していることをコンパイル時に検証します。
var _ usecase.Store = (*registrationGorm)(nil)

// NewRegistrationRepository は指定されたgorm.DB接続でregistrationGormの新しいインスタンスを生成します。
func NewRegistrationRepository(db *gorm.DB) *registrationGorm {
	return &registrationGorm{db: db}
}

// WithinTx はfnをGORMのトランザクション内で実行します。
func (r *registrationGorm) WithinTx(ctx context.Context, fn func(tx usecase.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// FindByEventAndUser は(event, user)の登録を取得します。
func (r *registrationGorm) FindByEventAndUser(ctx context.Context, eventID, userID uint) (*entity.Registration, error) {
	return findByEventAndUser(r.db.WithContext(ctx), eventID, userID)
}

// FindByUser はユーザーの登録をイベントのタイトル・日時付きで取得します。
func (r *registrationGorm) FindByUser(ctx context.Context, userID uint) ([]usecase.UserRegistration, error) {
	var out []usecase.UserRegistration
	err := r.db.WithContext(ctx).
		Table("registrations").
		Select("registrations.*, events.title AS event_title, events.event_date AS event_date, events.active AS event_active").
		Joins("JOIN events ON events.id = registrations.event_id").
		Where("registrations.user_id = ?", userID).
		Order("events.event_date ASC").
		Order("registrations.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByEvent はイベントの登録を参加者のメールアドレス・氏名付きで取得します。
func (r *registrationGorm) FindByEvent(ctx context.Context, eventID uint, statuses ...entity.Status) ([]usecase.EventRegistrant, error) {
	q := r.db.WithContext(ctx).
		Table("registrations").
		Select("registrations.*, users.email AS email, users.first_name AS first_name, users.last_name AS last_name").
		Joins("JOIN users ON users.id = registrations.user_id").
		Where("registrations.event_id = ?", eventID)
	if len(statuses) > 0 {
		q = q.Where("registrations.status IN ?", statuses)
	}

	var out []usecase.EventRegistrant
	if err := q.Order("registrations.registered_at ASC").Order("registrations.id ASC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountActiveByEvent はREGISTEREDまたはATTENDEDの登録数を数えます。
func (r *registrationGorm) CountActiveByEvent(ctx context.Context, eventID uint) (int64, error) {
	return countActive(r.db.WithContext(ctx), eventID)
}

// ActiveEventIDsForUser はeventIDsのうちユーザーが席を持つイベントを返します。
func (r *registrationGorm) ActiveEventIDsForUser(ctx context.Context, userID uint, eventIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Where("user_id = ? AND event_id IN ? AND status IN ?", userID, eventIDs, entity.ActiveStatuses).
		Pluck("event_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// MarkConfirmationSent は確認通知の送信時刻を記録します。
func (r *registrationGorm) MarkConfirmationSent(ctx context.Context, registrationID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Registration{}).
		Where("id = ?", registrationID).
		UpdateColumn("confirmation_sent_at", at).Error
}

// FindAttendance は(event, user)の出席記録を取得します。
func (r *registrationGorm) FindAttendance(ctx context.Context, eventID, userID uint) (*entity.Attendance, error) {
	var a entity.Attendance
	err := r.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAttendanceNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAttendanceByEvent はイベントの出席記録をチェックイン順に取得します。
func (r *registrationGorm) FindAttendanceByEvent(ctx context.Context, eventID uint) ([]entity.Attendance, error) {
	var out []entity.Attendance
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("checked_in_at ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountAttendanceByEvent はイベントの出席者数を数えます。
func (r *registrationGorm) CountAttendanceByEvent(ctx context.Context, eventID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Attendance{}).Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}

// gormTx はTxインターフェースのGORM実装です。dbはトランザクションです。
type gormTx struct {
	db *gorm.DB
}

var _ usecase.Tx = (*gormTx)(nil)

// LockEvent はSELECT ... FOR UPDATEでイベント行をロックします。
// SQLiteドライバはロック句を出力しないため、SQLiteでは接続の直列化に依存します。
func (t *gormTx) LockEvent(ctx context.Context, eventID uint) (*evententity.Event, error) {
	var e evententity.Event
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", eventID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (t *gormTx) FindByEventAndUser(ctx context.Context, eventID, userID uint) (*entity.Registration, error) {
	return findByEventAndUser(t.db.WithContext(ctx), eventID, userID)
}

// Save は新規なら作成、既存なら全列を更新します。
func (t *gormTx) Save(ctx context.Context, reg *entity.Registration) error {
	q := t.db.WithContext(ctx)
	var err error
	if reg.ID == 0 {
		err = q.Create(reg).Error
	} else {
		err = q.Save(reg).Error
	}
	if db.IsUniqueViolation(err) {
		return usecase.ErrAlreadyRegistered
	}
	return err
}

// IncrementRegistered は定員未満の場合のみカウンタを増やします。
func (t *gormTx) IncrementRegistered(ctx context.Context, eventID uint) error {
	res := t.db.WithContext(ctx).
		Model(&evententity.Event{}).
		Where("id = ? AND registered_count < capacity", eventID).
		UpdateColumn("registered_count", gorm.Expr("registered_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrEventFull
	}
	return nil
}

// DecrementRegistered はカウンタが正の場合のみ減らします。
func (t *gormTx) DecrementRegistered(ctx context.Context, eventID uint) error {
	return t.db.WithContext(ctx).
		Model(&evententity.Event{}).
		Where("id = ? AND registered_count > 0", eventID).
		UpdateColumn("registered_count", gorm.Expr("registered_count - 1")).Error
}

func (t *gormTx) SetRegisteredCount(ctx context.Context, eventID uint, n int) error {
	return t.db.WithContext(ctx).
		Model(&evententity.Event{}).
		Where("id = ?", eventID).
		UpdateColumn("registered_count", n).Error
}

func (t *gormTx) CountActive(ctx context.Context, eventID uint) (int64, error) {
	return countActive(t.db.WithContext(ctx), eventID)
}

// CreateAttendance は出席記録を作成します。
func (t *gormTx) CreateAttendance(ctx context.Context, a *entity.Attendance) error {
	err := t.db.WithContext(ctx).Create(a).Error
	if db.IsUniqueViolation(err) {
		return usecase.ErrAlreadyAttended
	}
	return err
}

func findByEventAndUser(q *gorm.DB, eventID, userID uint) (*entity.Registration, error) {
	var reg entity.Registration
	if err := q.Where("event_id = ? AND user_id = ?", eventID, userID).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func countActive(q *gorm.DB, eventID uint) (int64, error) {
	var n int64
	err := q.Model(&entity.Registration{}).
		Where("event_id = ? AND status IN ?", eventID, entity.ActiveStatuses).
		Count(&n).Error
	return n, err
}
