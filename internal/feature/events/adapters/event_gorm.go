// Package adapters はeventsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"event_backend/internal/feature/events/domain/entity"
	"event_backend/internal/feature/events/usecase"
)

// eventGorm はEventRepositoryインターフェースのGORM実装です。
type eventGorm struct {
	db *gorm.DB
}

// eventGormがEventRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.EventRepository = (*eventGorm)(nil)

// NewEventRepository は指定されたgorm.DB接続でeventGormの新しいインスタンスを生成します。
func NewEventRepository(db *gorm.DB) *eventGorm {
	return &eventGorm{db: db}
}

// Create はイベントをデータベースに追加します。
func (r *eventGorm) Create(ctx context.Context, e *entity.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// FindByID はIDでイベントを取得します。
// イベントが存在しない場合、usecase.ErrEventNotFoundを返します。
func (r *eventGorm) FindByID(ctx context.Context, id uint) (*entity.Event, error) {
	var e entity.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// UpdateDetails は編集可能な列のみを更新します。
// 定員チェックは同じUPDATE文の条件で行うため、同時に進む登録と競合しません。
func (r *eventGorm) UpdateDetails(ctx context.Context, e *entity.Event) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Event{}).
		Where("id = ? AND active = ? AND registered_count <= ?", e.ID, true, e.Capacity).
		Updates(map[string]any{
			"title":       e.Title,
			"description": e.Description,
			"event_date":  e.EventDate,
			"venue":       e.Venue,
			"category":    e.Category,
			"capacity":    e.Capacity,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	current, err := r.FindByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if !current.Active {
		return usecase.ErrEventNotFound
	}
	return usecase.ErrCapacityBelowRegistered
}

// Deactivate はイベントを論理削除します。
func (r *eventGorm) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrEventNotFound
	}
	return nil
}

// active はアクティブなイベントを開催日時順に並べるクエリを返します。
func (r *eventGorm) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("event_date ASC").
		Order("id ASC")
}

// FindActive はアクティブなイベントを取得します。
func (r *eventGorm) FindActive(ctx context.Context) ([]entity.Event, error) {
	var out []entity.Event
	if err := r.active(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindUpcoming はnow以降に開催されるアクティブなイベントを取得します。
func (r *eventGorm) FindUpcoming(ctx context.Context, now time.Time) ([]entity.Event, error) {
	var out []entity.Event
	if err := r.active(ctx).Where("event_date >= ?", now.UTC()).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Search はタイトルまたはカテゴリの部分一致で検索します。
func (r *eventGorm) Search(ctx context.Context, term string) ([]entity.Event, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	var out []entity.Event
	err := r.active(ctx).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, pattern, pattern).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByCategory はカテゴリの完全一致（大文字小文字を区別しない）で検索します。
func (r *eventGorm) FindByCategory(ctx context.Context, category string) ([]entity.Event, error) {
	var out []entity.Event
	err := r.active(ctx).
		Where("LOWER(category) = ?", strings.ToLower(category)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByOwner は作成者のアクティブなイベントを取得します。
func (r *eventGorm) FindByOwner(ctx context.Context, ownerID uint) ([]entity.Event, error) {
	var out []entity.Event
	if err := r.active(ctx).Where("created_by = ?", ownerID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike はLIKEのワイルドカード文字をエスケープします。
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
