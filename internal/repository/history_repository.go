package repository

import (
	"context"
	"fmt"

	"chemequip/internal/models"

	"gorm.io/gorm"
)

type HistoryRepository interface {
	Create(ctx context.Context, entry *models.UploadHistory) error
	Count(ctx context.Context) (int64, error)
	TrimTo(ctx context.Context, keep int) (int64, error)
	GetRecent(ctx context.Context, limit int) ([]models.UploadHistory, error)
	LatestID(ctx context.Context) (int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, entry *models.UploadHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UploadHistory{}).
		Count(&count).
		Error
	return count, err
}

// TrimTo deletes the oldest entries until at most keep remain and reports
// how many rows were removed.
func (r *historyRepository) TrimTo(ctx context.Context, keep int) (int64, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}

	excess := count - int64(keep)
	if excess <= 0 {
		return 0, nil
	}

	var ids []uint
	err = r.db.WithContext(ctx).
		Model(&models.UploadHistory{}).
		Order("uploaded_at ASC").
		Order("id ASC").
		Limit(int(excess)).
		Pluck("id", &ids).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to select oldest history: %w", err)
	}

	result := r.db.WithContext(ctx).Delete(&models.UploadHistory{}, ids)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete oldest history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *historyRepository) GetRecent(ctx context.Context, limit int) ([]models.UploadHistory, error) {
	if limit < 1 {
		limit = 5
	}

	entries := make([]models.UploadHistory, 0, limit)
	err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&entries).
		Error
	return entries, err
}

// LatestID returns the highest upload id, or 0 when nothing was uploaded.
// The newest entry is never evicted, so the value only grows.
func (r *historyRepository) LatestID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).
		Model(&models.UploadHistory{}).
		Select("COALESCE(MAX(id), 0)").
		Row().
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read latest upload id: %w", err)
	}
	return id, nil
}
