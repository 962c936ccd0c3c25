package overrides

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
)

type OverrideRepo interface {
	Create(ctx context.Context, tx *gorm.DB, slug, name, content, updatedBy string) (*domain.PersonContentOverride, error)
	Update(ctx context.Context, tx *gorm.DB, slug, content, updatedBy string) (*domain.PersonContentOverride, error)
	FindBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.PersonContentOverride, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*domain.PersonContentOverride, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string) ([]*domain.PersonContentOverride, error)
	Delete(ctx context.Context, tx *gorm.DB, slug string) error
}

type overrideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOverrideRepo(db *gorm.DB, baseLog *logger.Logger) OverrideRepo {
	return &overrideRepo{db: db, log: baseLog.With("repo", "OverrideRepo")}
}

func (r *overrideRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *overrideRepo) Create(ctx context.Context, tx *gorm.DB, slug, name, content, updatedBy string) (*domain.PersonContentOverride, error) {
	transaction := r.handle(tx)

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.PersonContentOverride{}).
		Where("person_slug = ?", slug).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, pkgerrors.ErrDuplicateSlug
	}

	row := &domain.PersonContentOverride{
		ID:         uuid.New(),
		PersonSlug: slug,
		PersonName: name,
		Content:    content,
		UpdatedBy:  updatedBy,
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.ErrDuplicateSlug
		}
		return nil, err
	}
	return row, nil
}

func (r *overrideRepo) Update(ctx context.Context, tx *gorm.DB, slug, content, updatedBy string) (*domain.PersonContentOverride, error) {
	transaction := r.handle(tx)

	row, err := r.FindBySlug(ctx, transaction, slug)
	if err != nil {
		return nil, err
	}

	row.Content = content
	row.UpdatedBy = updatedBy
	row.UpdatedAt = time.Now()
	if err := transaction.WithContext(ctx).
		Model(&domain.PersonContentOverride{}).
		Where("person_slug = ?", slug).
		Updates(map[string]any{
			"content":    row.Content,
			"updated_by": row.UpdatedBy,
			"updated_at": row.UpdatedAt,
		}).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *overrideRepo) FindBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.PersonContentOverride, error) {
	transaction := r.handle(tx)

	var row domain.PersonContentOverride
	err := transaction.WithContext(ctx).
		Where("person_slug = ?", slug).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *overrideRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*domain.PersonContentOverride, error) {
	transaction := r.handle(tx)

	var rows []*domain.PersonContentOverride
	if err := transaction.WithContext(ctx).
		Order("person_slug asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *overrideRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := r.handle(tx)

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.PersonContentOverride{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *overrideRepo) Search(ctx context.Context, tx *gorm.DB, query string) ([]*domain.PersonContentOverride, error) {
	transaction := r.handle(tx)

	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []*domain.PersonContentOverride
	if err := transaction.WithContext(ctx).
		Where("lower(person_name) LIKE ? OR lower(content) LIKE ?", pattern, pattern).
		Order("person_slug asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *overrideRepo) Delete(ctx context.Context, tx *gorm.DB, slug string) error {
	transaction := r.handle(tx)

	result := transaction.WithContext(ctx).
		Where("person_slug = ?", slug).
		Delete(&domain.PersonContentOverride{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
