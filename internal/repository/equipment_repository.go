package repository

import (
	"context"
	"fmt"
	"sort"

	"chemequip/internal/models"

	"gorm.io/gorm"
)

type EquipmentRepository interface {
	ReplaceAll(ctx context.Context, items []models.Equipment) error
	List(ctx context.Context) ([]models.Equipment, error)
	Count(ctx context.Context) (int64, error)
	GetSummary(ctx context.Context) (*models.EquipmentSummary, error)
}

type equipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

// ReplaceAll deletes every stored reading and inserts items in their place.
// Callers wanting atomicity run it through a Transactor.
func (r *equipmentRepository) ReplaceAll(ctx context.Context, items []models.Equipment) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Equipment{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to clear equipment: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(items, 100).Error; err != nil {
		return fmt.Errorf("failed to insert equipment: %w", err)
	}
	return nil
}

func (r *equipmentRepository) List(ctx context.Context) ([]models.Equipment, error) {
	items := make([]models.Equipment, 0)
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&items).
		Error
	return items, err
}

func (r *equipmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Count(&count).
		Error
	return count, err
}

type typeAggregate struct {
	Type           string
	Count          int64
	SumFlowrate    float64
	SumPressure    float64
	SumTemperature float64
}

// GetSummary aggregates in one grouped statement so the total, the averages
// and the distribution all come from the same snapshot.
func (r *equipmentRepository) GetSummary(ctx context.Context) (*models.EquipmentSummary, error) {
	summary := &models.EquipmentSummary{
		TypeDistribution: make([]models.TypeCount, 0),
	}

	var groups []typeAggregate
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Select("type, COUNT(*) AS count, " +
			"SUM(flowrate) AS sum_flowrate, SUM(pressure) AS sum_pressure, SUM(temperature) AS sum_temperature").
		Group("type").
		Scan(&groups).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate equipment: %w", err)
	}

	var flowrate, pressure, temperature float64
	for _, g := range groups {
		summary.Total += g.Count
		flowrate += g.SumFlowrate
		pressure += g.SumPressure
		temperature += g.SumTemperature
		summary.TypeDistribution = append(summary.TypeDistribution, models.TypeCount{Type: g.Type, Count: g.Count})
	}

	if summary.Total > 0 {
		n := float64(summary.Total)
		summary.AvgFlowrate = flowrate / n
		summary.AvgPressure = pressure / n
		summary.AvgTemperature = temperature / n
	}

	// collations differ between dialects, so order in Go
	sort.Slice(summary.TypeDistribution, func(i, j int) bool {
		return summary.TypeDistribution[i].Type < summary.TypeDistribution[j].Type
	})

	return summary, nil
}
