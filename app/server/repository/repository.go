package repository

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Repository 针对单个模型的通用增删改查
type Repository[M any] struct {
	db      *gorm.DB
	timeout time.Duration // 单次查询超时，0 为不限制
}

func New[M any](db *gorm.DB, timeout time.Duration) *Repository[M] {
	return &Repository[M]{
		db:      db,
		timeout: timeout,
	}
}

func (r *Repository[M]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// DB 供派生仓库构造自定义查询
func (r *Repository[M]) DB() *gorm.DB {
	return r.db
}

func (r *Repository[M]) Get(ctx context.Context, id uint) (*M, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var m M
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// List 按 id 升序分页， limit < 0 时返回全部
func (r *Repository[M]) List(ctx context.Context, offset int, limit int) ([]M, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		list  []M
		count int64
	)

	query := r.db.WithContext(ctx).Model(new(M)).Order("id ASC")
	if limit >= 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, translate(err)
	}
	if err := r.db.WithContext(ctx).Model(new(M)).Count(&count).Error; err != nil {
		return nil, 0, translate(err)
	}

	return list, count, nil
}

func (r *Repository[M]) Create(ctx context.Context, m *M) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// Update 写回全部字段（创建时间除外）
func (r *Repository[M]) Update(ctx context.Context, m *M) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(m).Select("*").Omit("created_at").Updates(m)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[M]) Delete(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(new(M), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[M]) Exists(ctx context.Context, id uint) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := r.db.WithContext(ctx).Model(new(M)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}

// 驱动未翻译错误时按文本识别唯一约束冲突
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
