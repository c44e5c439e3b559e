package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"chemequip/internal/models"
	"chemequip/internal/repository"
	"chemequip/internal/utils"

	"gorm.io/datatypes"
)

const (
	// HistoryLimit is the number of upload history entries kept after each upload.
	HistoryLimit = 5

	maxFileNameLen = 255
)

// Cache keys carry the latest upload id, so a value computed before an
// upload committed can only ever be stored under a key nobody reads again.
func summaryCacheKey(version int64) string {
	return fmt.Sprintf("equipment:summary:v%d", version)
}

func historyCacheKey(version int64) string {
	return fmt.Sprintf("equipment:history:v%d", version)
}

type EquipmentService interface {
	Upload(ctx context.Context, fileName string, file io.Reader) (*models.UploadHistory, error)
	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	GetSummary(ctx context.Context) (*models.EquipmentSummary, error)
	GetHistory(ctx context.Context) ([]models.UploadHistory, error)
}

// UploadNotifier is told about every committed upload.
type UploadNotifier interface {
	PublishUpload(ctx context.Context, entry models.UploadHistory) error
}

type EquipmentConfig struct {
	CacheTTL time.Duration
	Clock    utils.Clock
}

type equipmentService struct {
	repo        repository.EquipmentRepository
	historyRepo repository.HistoryRepository
	transactor  repository.Transactor
	cacheRepo   repository.CacheRepository
	notifier    UploadNotifier
	clock       utils.Clock
	cacheTTL    time.Duration

	// serializes uploads within this process
	uploadMu sync.Mutex
}

func NewEquipmentService(
	repo repository.EquipmentRepository,
	historyRepo repository.HistoryRepository,
	transactor repository.Transactor,
	cacheRepo repository.CacheRepository,
	notifier UploadNotifier,
	config EquipmentConfig,
) EquipmentService {
	if config.Clock == nil {
		config.Clock = utils.RealClock{}
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if cacheRepo == nil {
		cacheRepo = repository.NewNoopCacheRepository()
	}

	return &equipmentService{
		repo:        repo,
		historyRepo: historyRepo,
		transactor:  transactor,
		cacheRepo:   cacheRepo,
		notifier:    notifier,
		clock:       config.Clock,
		cacheTTL:    config.CacheTTL,
	}
}

func (s *equipmentService) Upload(ctx context.Context, fileName string, file io.Reader) (*models.UploadHistory, error) {
	if file == nil {
		return nil, &ValidationError{Kind: MissingFile}
	}

	parsed, err := ParseEquipmentCSV(file)
	if err != nil {
		return nil, err
	}

	columns, err := json.Marshal(parsed.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal columns: %w", err)
	}

	entry := &models.UploadHistory{
		FileName:     truncateRunes(fileName, maxFileNameLen),
		TotalRecords: len(parsed.Rows),
		UploadedAt:   s.clock.Now().UTC().Truncate(time.Microsecond),
		Columns:      datatypes.JSON(columns),
	}

	previous, trimmed, err := s.store(ctx, entry, parsed.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload %q: %w", entry.FileName, err)
	}

	log.Printf("Upload %q stored: %d records, %d old history entries evicted",
		entry.FileName, entry.TotalRecords, trimmed)

	if err := s.cacheRepo.Delete(ctx, summaryCacheKey(previous), historyCacheKey(previous)); err != nil {
		log.Printf("Failed to drop stale equipment cache: %v", err)
	}

	if s.notifier != nil {
		if err := s.notifier.PublishUpload(ctx, *entry); err != nil {
			log.Printf("Failed to publish upload event: %v", err)
		}
	}

	return entry, nil
}

// store runs the upload transaction under uploadMu and returns the cache
// version that was current before it.
func (s *equipmentService) store(ctx context.Context, entry *models.UploadHistory, rows []models.Equipment) (int64, int64, error) {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	var previous, trimmed int64
	err := s.transactor.WithinTransaction(ctx, func(repos repository.TxRepositories) error {
		var err error
		previous, err = repos.History.LatestID(ctx)
		if err != nil {
			return err
		}

		if err := repos.History.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to save upload history: %w", err)
		}

		trimmed, err = repos.History.TrimTo(ctx, HistoryLimit)
		if err != nil {
			return err
		}

		return repos.Equipment.ReplaceAll(ctx, rows)
	})
	return previous, trimmed, err
}

func (s *equipmentService) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}

// cacheVersion reports false when the version is unknown; callers then skip the cache.
func (s *equipmentService) cacheVersion(ctx context.Context) (int64, bool) {
	version, err := s.historyRepo.LatestID(ctx)
	if err != nil {
		log.Printf("Failed to read cache version: %v", err)
		return 0, false
	}
	return version, true
}

func (s *equipmentService) GetSummary(ctx context.Context) (*models.EquipmentSummary, error) {
	version, cacheable := s.cacheVersion(ctx)
	key := summaryCacheKey(version)

	if cacheable {
		var cached models.EquipmentSummary
		if found, err := s.cacheRepo.GetJSON(ctx, key, &cached); err != nil {
			log.Printf("Failed to read summary cache: %v", err)
		} else if found {
			return &cached, nil
		}
	}

	summary, err := s.repo.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment summary: %w", err)
	}

	if cacheable {
		if err := s.cacheRepo.SetJSON(ctx, key, summary, s.cacheTTL); err != nil {
			log.Printf("Failed to cache summary: %v", err)
		}
	}

	return summary, nil
}

func (s *equipmentService) GetHistory(ctx context.Context) ([]models.UploadHistory, error) {
	version, cacheable := s.cacheVersion(ctx)
	key := historyCacheKey(version)

	if cacheable {
		var cached []models.UploadHistory
		if found, err := s.cacheRepo.GetJSON(ctx, key, &cached); err != nil {
			log.Printf("Failed to read history cache: %v", err)
		} else if found {
			return cached, nil
		}
	}

	history, err := s.historyRepo.GetRecent(ctx, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload history: %w", err)
	}

	if cacheable {
		if err := s.cacheRepo.SetJSON(ctx, key, history, s.cacheTTL); err != nil {
			log.Printf("Failed to cache history: %v", err)
		}
	}

	return history, nil
}
