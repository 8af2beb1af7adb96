package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/config"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/reputation"
	"github.com/shenikar/safe_route_system/pkg/e"
	"github.com/shenikar/safe_route_system/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// CreateReportInput — данные новой отметки. Origin в формате "lat,lon".
type CreateReportInput struct {
	CreatorID      uuid.UUID
	Origin         string
	Classification models.Classification
	// Description — необязательный комментарий автора
	Description string
}

type reportService struct {
	store     Store
	cache     HazardCache
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	threshold int
	location  *time.Location
	now       func() time.Time
}

func NewReportService(store Store, cache HazardCache, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) ReportService {
	return &reportService{
		store:     store,
		cache:     cache,
		logger:    logger,
		metrics:   m,
		threshold: cfg.TrustThreshold,
		location:  cfg.Location(),
		now:       time.Now,
	}
}

// CreateReport создаёт отметку. Достоверность определяется счётом автора на момент создания.
func (s *reportService) CreateReport(ctx context.Context, input CreateReportInput) (*models.HazardReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":        "report",
		"method":         "CreateReport",
		"creator_id":     input.CreatorID,
		"classification": input.Classification,
	})
	log.Info("Attempting to create a new hazard report")

	if input.CreatorID == uuid.Nil {
		return nil, fmt.Errorf("service: creator is required: %w", e.ErrMalformedInput)
	}
	if !input.Classification.Valid() {
		log.Warn("Unknown classification")
		return nil, fmt.Errorf("service: unknown classification %q: %w", input.Classification, e.ErrMalformedInput)
	}
	point, err := models.ParseLatLon(input.Origin)
	if err != nil {
		log.WithError(err).Warn("Invalid origin")
		return nil, fmt.Errorf("service: could not create report: %w", err)
	}
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(description) > models.MaxDescriptionLength {
		return nil, fmt.Errorf("service: description longer than %d characters: %w", models.MaxDescriptionLength, e.ErrMalformedInput)
	}

	creator, err := s.store.Users().GetByID(ctx, input.CreatorID)
	if err != nil {
		log.WithError(err).Warn("Failed to load report creator")
		return nil, fmt.Errorf("service: could not load creator: %w", err)
	}

	report := &models.HazardReport{
		CreatorID:      creator.ID,
		Classification: input.Classification,
		Description:    description,
		Latitude:       point.Lat,
		Longitude:      point.Lon,
		IsValid:        reputation.Trusted(creator.Score, s.threshold),
		CreatedAt:      s.now().In(s.location),
	}
	if err := s.store.Reports().Create(ctx, report); err != nil {
		log.WithError(err).Error("Failed to create report in repository")
		return nil, fmt.Errorf("service: could not create report: %w", err)
	}

	if report.IsValid {
		s.invalidateConfirmed(ctx, log)
	}
	s.metrics.ReportCreated(string(report.Classification), report.IsValid)

	log.WithFields(logrus.Fields{
		"report_id": report.ID,
		"is_valid":  report.IsValid,
	}).Info("Hazard report created successfully")
	return report, nil
}

// GetReport получает отметку по ID
func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*models.HazardReport, error) {
	report, err := s.store.Reports().GetByID(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":   "report",
			"method":    "GetReport",
			"report_id": id,
		}).WithError(err).Warn("Failed to get report from repository")
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}
	return report, nil
}

// ListReports возвращает все известные отметки
func (s *reportService) ListReports(ctx context.Context) ([]*models.HazardReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "ListReports",
	})

	reports, err := s.store.Reports().List(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}

	log.WithField("count", len(reports)).Debug("Reports listed successfully")
	return reports, nil
}

// ConfirmedReports возвращает подтверждённые отметки, по возможности из кэша.
// Поколение кэша читается до запроса к хранилищу, поэтому список, прочитанный до сброса кэша, в кэш не попадёт.
// Ошибки кэша не прерывают запрос.
func (s *reportService) ConfirmedReports(ctx context.Context) ([]*models.HazardReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "ConfirmedReports",
	})

	var (
		generation int64
		fillCache  bool
	)
	if s.cache != nil {
		cached, gen, err := s.cache.GetConfirmed(ctx)
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to read confirmed reports from cache")
		case cached != nil:
			return cached, nil
		default:
			generation, fillCache = gen, true
		}
	}

	reports, err := s.store.Reports().ListConfirmed(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list confirmed reports from repository")
		return nil, fmt.Errorf("service: could not list confirmed reports: %w", err)
	}

	if fillCache {
		err := s.cache.SetConfirmed(ctx, generation, reports)
		switch {
		case errors.Is(err, ErrStaleCache):
			log.WithField("generation", generation).Debug("Confirmed reports changed while loading, cache not filled")
		case err != nil:
			log.WithError(err).Warn("Failed to cache confirmed reports")
		}
	}
	return reports, nil
}

func (s *reportService) invalidateConfirmed(ctx context.Context, log *logrus.Entry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateConfirmed(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate confirmed reports cache")
	}
}
