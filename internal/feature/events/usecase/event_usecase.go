package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"event_backend/internal/feature/events/domain/entity"
	"event_backend/internal/shared/identity"
)

// localDateTimeLayout はタイムゾーンなしのISO-8601日時です。UTCとして解釈します。
const localDateTimeLayout = "2006-01-02T15:04:05"

// EventRepository はイベントエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type EventRepository interface {
	// Create は新しいイベントを永続化し、IDを設定します。
	Create(ctx context.Context, e *entity.Event) error

	// FindByID はIDでイベントを取得します。存在しない場合はErrEventNotFoundを返します。
	// 非アクティブなイベントも返します。
	FindByID(ctx context.Context, id uint) (*entity.Event, error)

	// UpdateDetails はタイトル・説明・日時・会場・カテゴリ・定員のみを更新します。
	// registered_countは変更しません。定員が登録数を下回る場合はErrCapacityBelowRegisteredを返します。
	UpdateDetails(ctx context.Context, e *entity.Event) error

	// Deactivate はイベントを論理削除します。
	Deactivate(ctx context.Context, id uint) error

	// FindActive はアクティブなイベントを開催日時の昇順で返します。
	FindActive(ctx context.Context) ([]entity.Event, error)

	// FindUpcoming はnow以降に開催されるアクティブなイベントを返します。
	FindUpcoming(ctx context.Context, now time.Time) ([]entity.Event, error)

	// Search はタイトルまたはカテゴリに語句を含むアクティブなイベントを返します（大文字小文字を区別しない）。
	Search(ctx context.Context, term string) ([]entity.Event, error)

	// FindByCategory はカテゴリが一致するアクティブなイベントを返します（大文字小文字を区別しない）。
	FindByCategory(ctx context.Context, category string) ([]entity.Event, error)

	// FindByOwner は指定ユーザーが作成したアクティブなイベントを返します。
	FindByOwner(ctx context.Context, ownerID uint) ([]entity.Event, error)
}

// RegistrationLookup は呼び出し元の登録状態を解決します。
type RegistrationLookup interface {
	// ActiveEventIDsForUser はeventIDsのうち、userIDがREGISTEREDまたはATTENDEDで登録しているイベントを返します。
	ActiveEventIDsForUser(ctx context.Context, userID uint, eventIDs []uint) (map[uint]bool, error)
}

// OwnerDirectory はイベント作成者の表示名を解決します。
type OwnerDirectory interface {
	// DisplayNames はユーザーIDから「名 姓」への対応を返します。存在しないIDは含みません。
	DisplayNames(ctx context.Context, ids []uint) (map[uint]string, error)
}

// EventInput はイベント作成・更新のリクエスト内容です。
type EventInput struct {
	Title       string
	Description string
	// EventDate はISO-8601形式の日時文字列です。
	EventDate string
	Venue     string
	Category  string
	Capacity  int
}

// EventView は呼び出し元ごとのフラグを付与したイベントの読み取り専用ビューです。
type EventView struct {
	entity.Event
	OwnerName    string
	IsRegistered bool
}

// eventUsecase はイベントのライフサイクルを実装します。
type eventUsecase struct {
	events        EventRepository
	registrations RegistrationLookup
	owners        OwnerDirectory
	now           func() time.Time
}

// NewEventUsecase はeventUsecaseの新しいインスタンスを生成します。
func NewEventUsecase(events EventRepository, registrations RegistrationLookup, owners OwnerDirectory) *eventUsecase {
	return &eventUsecase{
		events:        events,
		registrations: registrations,
		owners:        owners,
		now:           time.Now,
	}
}

// ParseEventDate はISO-8601の日時文字列を解析します。
// オフセット付き（RFC 3339）とオフセットなし（UTCとして解釈）の両方を受け付けます。
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(localDateTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidEventDate
}

// validate は入力値を検証し、解析済みの開催日時を返します。
func validate(in EventInput) (time.Time, error) {
	if strings.TrimSpace(in.Title) == "" {
		return time.Time{}, ErrTitleRequired
	}
	if in.Capacity <= 0 {
		return time.Time{}, ErrInvalidCapacity
	}
	return ParseEventDate(in.EventDate)
}

// Create は管理者のみがイベントを作成できます。
func (u *eventUsecase) Create(ctx context.Context, in EventInput, actor identity.Identity) (*EventView, error) {
	if actor.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	date, err := validate(in)
	if err != nil {
		return nil, err
	}
	if date.Before(u.now()) {
		return nil, ErrEventDateInPast
	}

	e := &entity.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		EventDate:   date,
		Venue:       in.Venue,
		Category:    strings.TrimSpace(in.Category),
		Capacity:    in.Capacity,
		CreatedBy:   actor.UserID,
		Active:      true,
	}
	if err := u.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("event created", "event_id", e.ID, "user_id", actor.UserID)
	return u.viewOne(ctx, e, actor)
}

// loadMutable はイベントを取得し、呼び出し元が変更権限を持つか確認します。
func (u *eventUsecase) loadMutable(ctx context.Context, eventID uint, actor identity.Identity) (*entity.Event, error) {
	if actor.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	e, err := u.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !e.Active {
		return nil, ErrEventNotFound
	}
	if !e.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}
	return e, nil
}

// Update は作成者または管理者がイベントの内容を置き換えます。
// registeredCountと登録情報には触れません。
func (u *eventUsecase) Update(ctx context.Context, eventID uint, in EventInput, actor identity.Identity) (*EventView, error) {
	e, err := u.loadMutable(ctx, eventID, actor)
	if err != nil {
		return nil, err
	}

	date, err := validate(in)
	if err != nil {
		return nil, err
	}
	if in.Capacity < e.RegisteredCount {
		return nil, ErrCapacityBelowRegistered
	}

	e.Title = strings.TrimSpace(in.Title)
	e.Description = in.Description
	e.EventDate = date
	e.Venue = in.Venue
	e.Category = strings.TrimSpace(in.Category)
	e.Capacity = in.Capacity

	if err := u.events.UpdateDetails(ctx, e); err != nil {
		return nil, err
	}

	slog.Info("event updated", "event_id", eventID, "user_id", actor.UserID)

	// 最新のregisteredCountを反映するため再取得
	fresh, err := u.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return u.viewOne(ctx, fresh, actor)
}

// Delete は作成者または管理者がイベントを論理削除します。登録情報は削除しません。
func (u *eventUsecase) Delete(ctx context.Context, eventID uint, actor identity.Identity) error {
	if _, err := u.loadMutable(ctx, eventID, actor); err != nil {
		return err
	}
	if err := u.events.Deactivate(ctx, eventID); err != nil {
		return err
	}
	slog.Info("event deleted", "event_id", eventID, "user_id", actor.UserID)
	return nil
}

// Get はアクティブなイベントを1件返します。
func (u *eventUsecase) Get(ctx context.Context, eventID uint, caller identity.Identity) (*EventView, error) {
	e, err := u.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !e.Active {
		return nil, ErrEventNotFound
	}
	return u.viewOne(ctx, e, caller)
}

// List はアクティブなイベントをすべて返します。
func (u *eventUsecase) List(ctx context.Context, caller identity.Identity) ([]EventView, error) {
	events, err := u.events.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return u.views(ctx, events, caller)
}

// ListUpcoming は現在以降に開催されるイベントを返します。
func (u *eventUsecase) ListUpcoming(ctx context.Context, caller identity.Identity) ([]EventView, error) {
	events, err := u.events.FindUpcoming(ctx, u.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return u.views(ctx, events, caller)
}

// Search はタイトルまたはカテゴリで検索します。空の語句はアクティブな全件を返します。
func (u *eventUsecase) Search(ctx context.Context, term string, caller identity.Identity) ([]EventView, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return u.List(ctx, caller)
	}
	events, err := u.events.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	return u.views(ctx, events, caller)
}

// FilterByCategory はカテゴリで絞り込みます。
func (u *eventUsecase) FilterByCategory(ctx context.Context, category string, caller identity.Identity) ([]EventView, error) {
	events, err := u.events.FindByCategory(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("failed to filter events: %w", err)
	}
	return u.views(ctx, events, caller)
}

// ListByOwner は呼び出し元が作成したイベントを返します。
func (u *eventUsecase) ListByOwner(ctx context.Context, caller identity.Identity) ([]EventView, error) {
	if caller.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	events, err := u.events.FindByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned events: %w", err)
	}
	return u.views(ctx, events, caller)
}

func (u *eventUsecase) viewOne(ctx context.Context, e *entity.Event, caller identity.Identity) (*EventView, error) {
	vs, err := u.views(ctx, []entity.Event{*e}, caller)
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

// views は作成者名と呼び出し元の登録状態をまとめて解決します。
func (u *eventUsecase) views(ctx context.Context, events []entity.Event, caller identity.Identity) ([]EventView, error) {
	out := make([]EventView, len(events))
	if len(events) == 0 {
		return out, nil
	}

	ids := make([]uint, len(events))
	owners := make([]uint, 0, len(events))
	seen := make(map[uint]struct{}, len(events))
	for i, e := range events {
		ids[i] = e.ID
		if _, ok := seen[e.CreatedBy]; !ok {
			seen[e.CreatedBy] = struct{}{}
			owners = append(owners, e.CreatedBy)
		}
	}

	names, err := u.owners.DisplayNames(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owners: %w", err)
	}

	var registered map[uint]bool
	if !caller.IsAnonymous() {
		registered, err = u.registrations.ActiveEventIDsForUser(ctx, caller.UserID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve registrations: %w", err)
		}
	}

	for i, e := range events {
		out[i] = EventView{
			Event:        e,
			OwnerName:    names[e.CreatedBy],
			IsRegistered: registered[e.ID],
		}
	}
	return out, nil
}
