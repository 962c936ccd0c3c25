package overrides

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
)

type MigrationRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *domain.MigrationRun) (*domain.MigrationRun, error)
	Latest(ctx context.Context, tx *gorm.DB) (*domain.MigrationRun, error)
}

type migrationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMigrationRunRepo(db *gorm.DB, baseLog *logger.Logger) MigrationRunRepo {
	return &migrationRunRepo{db: db, log: baseLog.With("repo", "MigrationRunRepo")}
}

func (r *migrationRunRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *migrationRunRepo) Create(ctx context.Context, tx *gorm.DB, run *domain.MigrationRun) (*domain.MigrationRun, error) {
	transaction := r.handle(tx)

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *migrationRunRepo) Latest(ctx context.Context, tx *gorm.DB) (*domain.MigrationRun, error) {
	transaction := r.handle(tx)

	var run domain.MigrationRun
	err := transaction.WithContext(ctx).
		Order("created_at desc").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
