package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	apperrors "weatherdash.app/errors"
)

// KVRecord is the persisted row backing one store entry
type KVRecord struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the gorm default
func (KVRecord) TableName() string {
	return "kv_entries"
}

// GormStore persists entries through a gorm-managed database
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(key string) (string, bool, error) {
	var record KVRecord
	result := s.db.First(&record, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, apperrors.NewStorageError("read store entry", result.Error)
	}
	return record.Value, true, nil
}

func (s *GormStore) Set(key, value string) error {
	record := KVRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record)
	if result.Error != nil {
		return apperrors.NewStorageError("write store entry", result.Error)
	}
	return nil
}

func (s *GormStore) Delete(key string) error {
	result := s.db.Delete(&KVRecord{}, "key = ?", key)
	if result.Error != nil {
		return apperrors.NewStorageError("delete store entry", result.Error)
	}
	return nil
}
