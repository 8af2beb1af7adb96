package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/shenikar/safe_route_system/internal/avoidance"
	"github.com/shenikar/safe_route_system/internal/config"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/pkg/e"
	"github.com/shenikar/safe_route_system/pkg/metrics"
	"github.com/shenikar/safe_route_system/pkg/ors"
	"github.com/sirupsen/logrus"
)

// RouteRequest — запрос маршрута. Точки в формате "lat,lon", пустой профиль означает профиль по умолчанию.
type RouteRequest struct {
	Origin      string
	Destination string
	Profile     string
}

// Route — ответ маршрутизатора и параметры, с которыми он был получен
type Route struct {
	Profile      ors.Profile
	AvoidedZones int
	Result       json.RawMessage
}

// HazardSource отдаёт подтверждённые отметки для построения зон объезда
type HazardSource interface {
	ConfirmedReports(ctx context.Context) ([]*models.HazardReport, error)
}

type routeService struct {
	hazards        HazardSource
	engine         RoutingEngine
	logger         *logrus.Logger
	metrics        *metrics.Metrics
	defaultProfile string
}

func NewRouteService(hazards HazardSource, engine RoutingEngine, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) RouteService {
	return &routeService{
		hazards:        hazards,
		engine:         engine,
		logger:         logger,
		metrics:        m,
		defaultProfile: cfg.DefaultProfile,
	}
}

// PlanRoute строит маршрут в обход подтверждённых опасностей.
// Ошибка маршрутизатора возвращается как e.ErrRoutingUnavailable без повторных попыток.
func (s *routeService) PlanRoute(ctx context.Context, req RouteRequest) (*Route, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "route",
		"method":  "PlanRoute",
	})

	origin, err := models.ParseLatLon(req.Origin)
	if err != nil {
		return nil, fmt.Errorf("service: invalid origin: %w", err)
	}
	destination, err := models.ParseLatLon(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("service: invalid destination: %w", err)
	}
	profileName := req.Profile
	if profileName == "" {
		profileName = s.defaultProfile
	}
	profile, err := ors.ParseProfile(profileName)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	hazards, err := s.hazards.ConfirmedReports(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load confirmed hazards")
		return nil, fmt.Errorf("service: could not load hazards: %w", err)
	}
	avoid := avoidance.BuildAvoidanceSet(hazards)

	log = log.WithFields(logrus.Fields{
		"profile":       profile,
		"avoided_zones": len(avoid),
	})
	log.Info("Requesting route from routing engine")

	result, err := s.plan(ctx, origin, destination, profile, avoid)
	if err != nil {
		log.WithError(err).Error("Routing engine failed")
		return nil, fmt.Errorf("service: %v: %w", err, e.ErrRoutingUnavailable)
	}

	log.Info("Route planned successfully")
	return &Route{
		Profile:      profile,
		AvoidedZones: len(avoid),
		Result:       result,
	}, nil
}

// plan обращается к маршрутизатору. Координаты переводятся в порядок (долгота, широта).
func (s *routeService) plan(ctx context.Context, origin, destination models.LatLon, profile ors.Profile, avoid orb.MultiPolygon) (json.RawMessage, error) {
	started := time.Now()
	result, err := s.engine.Directions(ctx, ors.DirectionsRequest{
		Profile:       profile,
		Coordinates:   [][2]float64{origin.LonLat(), destination.LonLat()},
		AvoidPolygons: avoid,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RoutingObserved(status, time.Since(started), len(avoid))
	return result, err
}
