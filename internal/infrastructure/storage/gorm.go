package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/cyberportal/domain"
)

// VisitorRecord is one durable key-value entry of a visitor session.
type VisitorRecord struct {
	VisitorID string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	ExpiresAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// GormProvider implements domain.StorageProvider on a SQL backend, for
// deployments that run without redis. Expired rows are skipped on read
// and removed by Sweep.
type GormProvider struct {
	db  *gorm.DB
	ttl time.Duration
}

// Open opens a gorm connection for the configured driver. The sqlite
// driver serves single-node setups, postgres everything else.
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

// NewGormProvider migrates the visitor table and returns the provider.
func NewGormProvider(db *gorm.DB, ttl time.Duration) (*GormProvider, error) {
	if err := db.AutoMigrate(&VisitorRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate visitor storage: %w", err)
	}
	return &GormProvider{db: db, ttl: ttl}, nil
}

// Visitor implements domain.StorageProvider
func (p *GormProvider) Visitor(id string) domain.SessionStorage {
	return &gormStorage{db: p.db, visitor: id, ttl: p.ttl}
}

// Sweep deletes expired visitor rows.
func (p *GormProvider) Sweep(ctx context.Context) error {
	return p.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&VisitorRecord{}).Error
}

type gormStorage struct {
	db      *gorm.DB
	visitor string
	ttl     time.Duration
}

func (s *gormStorage) Get(ctx context.Context, key string) (string, error) {
	var rec VisitorRecord
	err := s.db.WithContext(ctx).
		Where("visitor_id = ? AND key = ?", s.visitor, key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage get %s: %w", key, err)
	}
	if rec.ExpiresAt.Before(time.Now()) {
		_ = s.Delete(ctx, key)
		return "", domain.ErrKeyNotFound
	}
	return rec.Value, nil
}

func (s *gormStorage) Set(ctx context.Context, key, value string) error {
	rec := VisitorRecord{
		VisitorID: s.visitor,
		Key:       key,
		Value:     value,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "visitor_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	return nil
}

func (s *gormStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("visitor_id = ? AND key IN ?", s.visitor, keys).
		Delete(&VisitorRecord{}).Error
	if err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}
	return nil
}

var _ domain.StorageProvider = (*GormProvider)(nil)
