package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/repository"
	"plate-stabilizer/internal/store"
	"plate-stabilizer/internal/utils"
	"plate-stabilizer/internal/validation"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// DetectionLog is the durable record of accepted plates.
type DetectionLog interface {
	LogDetection(ctx context.Context, rec plate.SavedRecord, filter plate.FilterConfig) error
	FindDetections(ctx context.Context, normalizedPlate *string, from, to *time.Time, limit, offset int) ([]repository.PlateDetection, error)
}

type PlateService struct {
	store      *store.ResultStore
	filter     *validation.Settings
	validator  *validation.Validator
	detections DetectionLog
	log        zerolog.Logger
}

// NewPlateService wires the store and filter together. detections may be nil
// when no database is configured.
func NewPlateService(
	st *store.ResultStore,
	filter *validation.Settings,
	validator *validation.Validator,
	detections DetectionLog,
	log zerolog.Logger,
) *PlateService {
	return &PlateService{
		store:      st,
		filter:     filter,
		validator:  validator,
		detections: detections,
		log:        log,
	}
}

// Known reports whether text is already saved.
func (s *PlateService) Known(text string) bool {
	return s.store.Contains(text)
}

// Submit validates a stable plate against the current filter and saves it.
func (s *PlateService) Submit(ctx context.Context, text string) (plate.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}

	cfg := s.filter.Get()
	if !s.validator.Validate(text, cfg) {
		s.log.Debug().
			Str("plate", text).
			Bool("filter_enabled", cfg.Enabled).
			Str("pattern", string(cfg.ActivePattern)).
			Bool("multi_pattern", cfg.MultiPatternMode).
			Msg("filtered out invalid plate format")
		return plate.OutcomeRejected, nil
	}

	rec, ok := s.store.Accept(text, cfg.ActivePattern, cfg.Enabled)
	if !ok {
		s.log.Debug().Str("plate", text).Msg("plate already saved")
		return plate.OutcomeDuplicate, nil
	}

	s.log.Info().
		Str("plate", rec.Text).
		Str("pattern", string(rec.PatternUsed)).
		Str("accepted_at", rec.AcceptedAt.String()).
		Msg("saved stable detection")

	if s.detections != nil {
		if err := s.detections.LogDetection(ctx, rec, cfg); err != nil {
			s.log.Error().Err(err).Str("plate", rec.Text).Msg("failed to write detection log")
		}
	}

	return plate.OutcomeAccepted, nil
}

func (s *PlateService) Saved() []plate.SavedRecord {
	return s.store.Records()
}

func (s *PlateService) Delete(index int) bool {
	rec, ok := s.store.DeleteAt(index)
	if ok {
		s.log.Info().Int("index", index).Str("plate", rec.Text).Msg("deleted saved plate")
	}
	return ok
}

func (s *PlateService) Clear() {
	n := s.store.Len()
	s.store.Clear()
	s.log.Info().Int("count", n).Msg("cleared saved plates")
}

func (s *PlateService) Export() plate.ExportPayload {
	return s.store.Export(s.filter.Get())
}

func (s *PlateService) Filter() plate.FilterConfig {
	return s.filter.Get()
}

// ApplyFilter replaces the filter settings in one step.
func (s *PlateService) ApplyFilter(cfg plate.FilterConfig) error {
	if err := s.filter.Set(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if cfg.CustomExpression != "" {
		if err := s.validator.Compile(cfg.CustomExpression); err != nil {
			s.log.Warn().Err(err).Str("pattern", cfg.CustomExpression).Msg("custom pattern does not compile and will never match")
		}
	}
	s.log.Info().
		Bool("enabled", cfg.Enabled).
		Str("pattern", string(cfg.ActivePattern)).
		Bool("multi_pattern", cfg.MultiPatternMode).
		Msg("filter settings applied")
	return nil
}

// Check reports how text fares under override, or under the current filter
// when override is nil.
func (s *PlateService) Check(text string, override *plate.FilterConfig) (validation.Report, error) {
	if strings.TrimSpace(text) == "" {
		return validation.Report{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	cfg := s.filter.Get()
	if override != nil {
		if err := validation.CheckConfig(*override); err != nil {
			return validation.Report{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		cfg = *override
	}
	return s.validator.Explain(text, cfg), nil
}

func (s *PlateService) History(ctx context.Context, plateQuery *string, from, to *string, limit, offset int) ([]DetectionInfo, error) {
	if s.detections == nil {
		return nil, fmt.Errorf("%w: detection log is not configured", ErrNotFound)
	}

	var normalizedPlate *string
	if plateQuery != nil {
		normalized := utils.NormalizePlate(*plateQuery)
		if normalized != "" {
			normalizedPlate = &normalized
		}
	}

	var fromTime, toTime *time.Time
	if from != nil && *from != "" {
		t, err := time.Parse(time.RFC3339, *from)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from time format", ErrInvalidInput)
		}
		fromTime = &t
	}
	if to != nil && *to != "" {
		t, err := time.Parse(time.RFC3339, *to)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to time format", ErrInvalidInput)
		}
		toTime = &t
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.detections.FindDetections(ctx, normalizedPlate, fromTime, toTime, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find detections: %w", err)
	}

	result := make([]DetectionInfo, 0, len(rows))
	for _, r := range rows {
		result = append(result, DetectionInfo{
			ID:              r.ID.String(),
			Plate:           r.Plate,
			NormalizedPlate: r.NormalizedPlate,
			PatternUsed:     r.PatternUsed,
			FilterEnabled:   r.FilterEnabled,
			AcceptedAt:      r.AcceptedAt,
		})
	}
	return result, nil
}

type DetectionInfo struct {
	ID              string    `json:"id"`
	Plate           string    `json:"plate"`
	NormalizedPlate string    `json:"normalized_plate"`
	PatternUsed     string    `json:"pattern_used"`
	FilterEnabled   bool      `json:"filter_enabled"`
	AcceptedAt      time.Time `json:"accepted_at"`
}
