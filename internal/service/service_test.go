package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"chemequip/internal/models"
	"chemequip/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stepClock advances by one second on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingNotifier struct {
	entries []models.UploadHistory
}

func (n *recordingNotifier) PublishUpload(_ context.Context, entry models.UploadHistory) error {
	n.entries = append(n.entries, entry)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Equipment{}, &models.UploadHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, cache repository.CacheRepository, notifier UploadNotifier) EquipmentService {
	t.Helper()

	db := newTestDB(t)
	return NewEquipmentService(
		repository.NewEquipmentRepository(db),
		repository.NewHistoryRepository(db),
		repository.NewTransactor(db),
		cache,
		notifier,
		EquipmentConfig{Clock: newStepClock()},
	)
}
