package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/multisite_shop/internal/util"
)

type toucher interface {
	Touch(now time.Time)
}

type softDeleter interface {
	MarkDeleted(now time.Time)
}

// Repository is the generic data access for one entity type. Queries run inside the
// transaction of the unit of work when ctx carries one.
type Repository[T any] struct {
	uow *UnitOfWork
}

func (r *Repository[T]) query(ctx context.Context, scopes ...Scope) *gorm.DB {
	return r.uow.DB(ctx).Model(new(T)).Scopes(scopes...)
}

func withoutPreload(db *gorm.DB) *gorm.DB {
	db.Statement.Preloads = nil
	return db
}

// Get returns gorm.ErrRecordNotFound (wrapped) when no row matches.
func (r *Repository[T]) Get(ctx context.Context, id uint, scopes ...Scope) (*T, error) {
	var out T
	err := r.query(ctx, append([]Scope{ByID(id)}, scopes...)...).First(&out).Error
	if err != nil {
		return nil, fmt.Errorf("get %T %d: %w", out, id, err)
	}
	return &out, nil
}

// FindBy returns the first matching row or nil when there is none.
func (r *Repository[T]) FindBy(ctx context.Context, scopes ...Scope) (*T, error) {
	var out T
	err := r.query(ctx, scopes...).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %T: %w", out, err)
	}
	return &out, nil
}

func (r *Repository[T]) Where(ctx context.Context, scopes ...Scope) ([]T, error) {
	var out []T
	if err := r.query(ctx, scopes...).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %T: %w", out, err)
	}
	return out, nil
}

func (r *Repository[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := r.query(ctx, scopes...).Scopes(withoutPreload).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %T: %w", new(T), err)
	}
	return n, nil
}

func (r *Repository[T]) Exists(ctx context.Context, scopes ...Scope) (bool, error) {
	n, err := r.Count(ctx, scopes...)
	return n > 0, err
}

// Page filters with scopes, counts, then applies ordering and skip/take.
func (r *Repository[T]) Page(ctx context.Context, p Paging, scopes ...Scope) (Page[T], error) {
	page, size := util.Normalize(p.PageNumber, p.PageSize)
	p.PageNumber, p.PageSize = page, size

	total, err := r.Count(ctx, scopes...)
	if err != nil {
		return Page[T]{}, err
	}

	var items []T
	if err := applyPaging[T](r.query(ctx, scopes...), p).Find(&items).Error; err != nil {
		return Page[T]{}, fmt.Errorf("page %T: %w", new(T), err)
	}

	return Page[T]{
		Items:      items,
		Total:      total,
		PageNumber: page,
		PageSize:   size,
		TotalPages: util.TotalPages(total, size),
	}, nil
}

// Add inserts v together with its has-many children.
func (r *Repository[T]) Add(ctx context.Context, v *T) error {
	if err := r.uow.DB(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("add %T: %w", v, err)
	}
	return nil
}

func (r *Repository[T]) AddRange(ctx context.Context, vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	if err := r.uow.DB(ctx).Create(&vs).Error; err != nil {
		return fmt.Errorf("add range %T: %w", vs, err)
	}
	return nil
}

// Update saves every column of v and stamps UpdatedDate. Associations are not written.
func (r *Repository[T]) Update(ctx context.Context, v *T) error {
	if t, ok := any(v).(toucher); ok {
		t.Touch(time.Now().UTC())
	}
	if err := r.uow.DB(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return fmt.Errorf("update %T: %w", v, err)
	}
	return nil
}

// UpdateColumns writes values to every row matching scopes and returns the affected count.
func (r *Repository[T]) UpdateColumns(ctx context.Context, values map[string]any, scopes ...Scope) (int64, error) {
	if len(scopes) == 0 {
		return 0, errors.New("update columns: refusing to update without a filter")
	}
	res := r.query(ctx, scopes...).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("update columns %T: %w", new(T), res.Error)
	}
	return res.RowsAffected, nil
}

// SoftRemove sets DeletedDate and clears Active.
func (r *Repository[T]) SoftRemove(ctx context.Context, v *T) error {
	d, ok := any(v).(softDeleter)
	if !ok {
		return fmt.Errorf("soft remove %T: entity has no deleted date", v)
	}
	d.MarkDeleted(time.Now().UTC())
	if err := r.uow.DB(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return fmt.Errorf("soft remove %T: %w", v, err)
	}
	return nil
}

func (r *Repository[T]) Remove(ctx context.Context, v *T) error {
	if err := r.uow.DB(ctx).Omit(clause.Associations).Delete(v).Error; err != nil {
		return fmt.Errorf("remove %T: %w", v, err)
	}
	return nil
}

// RemoveWhere hard deletes every row matching scopes.
func (r *Repository[T]) RemoveWhere(ctx context.Context, scopes ...Scope) error {
	if len(scopes) == 0 {
		return errors.New("remove where: refusing to delete without a filter")
	}
	if err := r.query(ctx, scopes...).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("remove where %T: %w", new(T), err)
	}
	return nil
}
