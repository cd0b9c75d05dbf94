package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/utils"
)

type DetectionRepository struct {
	db *gorm.DB
}

func NewDetectionRepository(db *gorm.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

type PlateDetection struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Plate           string         `gorm:"not null"`
	NormalizedPlate string         `gorm:"not null"`
	PatternUsed     string         `gorm:"not null"`
	FilterEnabled   bool           `gorm:"not null"`
	FilterSettings  datatypes.JSON `gorm:"type:jsonb"`
	AcceptedAt      time.Time      `gorm:"not null"`
	CreatedAt       time.Time
}

func (PlateDetection) TableName() string {
	return "plate_detections"
}

// LogDetection appends an accepted plate to the durable detection log along
// with the filter settings it was accepted under.
func (r *DetectionRepository) LogDetection(ctx context.Context, rec plate.SavedRecord, filter plate.FilterConfig) error {
	settings, err := json.Marshal(filter)
	if err != nil {
		return fmt.Errorf("encode filter settings: %w", err)
	}

	row := PlateDetection{
		ID:              uuid.New(),
		Plate:           rec.Text,
		NormalizedPlate: utils.NormalizePlate(rec.Text),
		PatternUsed:     string(rec.PatternUsed),
		FilterEnabled:   rec.FilterWasEnabled,
		FilterSettings:  datatypes.JSON(settings),
		AcceptedAt:      rec.AcceptedAt.Time(),
		CreatedAt:       time.Now(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *DetectionRepository) FindDetections(ctx context.Context, normalizedPlate *string, from, to *time.Time, limit, offset int) ([]PlateDetection, error) {
	query := r.db.WithContext(ctx).Model(&PlateDetection{})

	if normalizedPlate != nil {
		query = query.Where("normalized_plate = ?", *normalizedPlate)
	}
	if from != nil {
		query = query.Where("accepted_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("accepted_at <= ?", *to)
	}

	query = query.Order("accepted_at DESC")

	if limit > 0 {
		if limit > 100 {
			limit = 100
		}
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []PlateDetection
	err := query.Find(&rows).Error
	return rows, err
}
