package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageSlot строка таблицы слотов
type StorageSlot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;size:255"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (StorageSlot) TableName() string {
	return "storage_slots"
}

// postgresSlotRepository реализует SlotRepository для PostgreSQL через GORM
type postgresSlotRepository struct {
	db *gorm.DB
}

// NewPostgresSlotRepository создает хранилище слотов в PostgreSQL
// Схема создается через AutoMigrate(&StorageSlot{}) при старте сервиса
func NewPostgresSlotRepository(db *gorm.DB) SlotRepository {
	return &postgresSlotRepository{db: db}
}

// Get читает значение слота
func (r *postgresSlotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "storage_slots")
	defer timer.ObserveDuration()

	var slot StorageSlot
	result := r.db.WithContext(ctx).Where("slot_key = ?", key).First(&slot)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get slot %s: %w", key, result.Error)
	}

	return slot.Value, nil
}

// Set вставляет или перезаписывает слот (INSERT ... ON CONFLICT DO UPDATE)
func (r *postgresSlotRepository) Set(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpsert, "storage_slots")
	defer timer.ObserveDuration()

	slot := StorageSlot{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpsert)
		return fmt.Errorf("failed to upsert slot %s: %w", key, result.Error)
	}

	return nil
}

// Delete удаляет слот; отсутствие слота ошибкой не считается
func (r *postgresSlotRepository) Delete(ctx context.Context, key string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "storage_slots")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&StorageSlot{})
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete slot %s: %w", key, result.Error)
	}

	return nil
}

func (r *postgresSlotRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *postgresSlotRepository) Driver() string {
	return DriverPostgres
}
