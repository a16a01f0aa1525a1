package repository

import (
	"context"
	"database/sql"
	"errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"video-portal/entities"
)

var ErrNotFound = errors.New("record not found")

// Repository is the persistence surface of the portal. Every collection of the
// portal maps to one table.
type Repository interface {
	VideoRepository
	UserRepository
	PlaylistRepository
	WatchEventRepository
	FeedbackRepository
	SettingRepository
	JobRepository

	Transaction(ctx context.Context, callback func(ctx context.Context, tx Repository) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB
	Migrate(ctx context.Context) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB, logLevel logger.LogLevel) (Repository, error) {
	return Open(postgres.New(postgres.Config{Conn: db}), logLevel)
}

// Open builds a repository on any gorm dialector; tests pass sqlite here.
func Open(dialector gorm.Dialector, logLevel logger.LogLevel) (Repository, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}
	return &repo{db: gormDB}, nil
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(entities.All()...)
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context, tx Repository) error, opts ...*sql.TxOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return callback(ctx, &repo{db: tx})
	}, opts...)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
