package sqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deskvfs/pkg/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 基于 SQL 表实现 storage.Store
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := s.db.GetConn().WithContext(ctx).
		Where("kv_key = ?", key).
		First(&e).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return e.Value, nil
}

// Set 单条 UPSERT，事务失败时旧值不变
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value, Version: 1, UpdatedAt: time.Now()}
	err := s.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "kv_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      value,
				"version":    gorm.Expr("kv_entries.version + 1"),
				"updated_at": e.UpdatedAt,
			}),
		}).
		Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.db.GetConn().WithContext(ctx).
		Where("kv_key = ?", key).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Version 返回 key 当前的写入版本，不存在时返回 0
func (s *Store) Version(ctx context.Context, key string) (int64, error) {
	var e Entry
	err := s.db.GetConn().WithContext(ctx).
		Select("version").
		Where("kv_key = ?", key).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return e.Version, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
