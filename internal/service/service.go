package service

//go:generate mockgen -package mocks -source=service.go -destination=mocks/mock_service.go

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/pkg/ors"
)

// UserRepository определяет контракт для работы с пользователями в бд
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetForUpdate читает пользователя и блокирует запись до конца транзакции
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
}

// ReportRepository определяет контракт для работы с отметками в бд
type ReportRepository interface {
	Create(ctx context.Context, report *models.HazardReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.HazardReport, error)
	// GetForUpdate читает отметку и блокирует запись до конца транзакции
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.HazardReport, error)
	List(ctx context.Context) ([]*models.HazardReport, error)
	ListConfirmed(ctx context.Context) ([]*models.HazardReport, error)
	// Confirm переводит отметку в подтверждённые, только если она ещё не подтверждена
	Confirm(ctx context.Context, id uuid.UUID) error
	// Delete удаляет отметку, только если она ещё не подтверждена
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store — единственная точка доступа к хранилищу.
// WithTx выполняет fn в одной транзакции: коммит при nil, откат при ошибке.
type Store interface {
	Users() UserRepository
	Reports() ReportRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// ErrStaleCache возвращается SetConfirmed, если кэш был сброшен после чтения поколения
var ErrStaleCache = errors.New("confirmed hazards cache generation changed")

// HazardCache кэширует список подтверждённых отметок.
// Каждый сброс кэша начинает новое поколение. При промахе GetConfirmed возвращает nil и текущее поколение,
// SetConfirmed записывает список только для этого же поколения, иначе возвращает ErrStaleCache.
type HazardCache interface {
	GetConfirmed(ctx context.Context) ([]*models.HazardReport, int64, error)
	SetConfirmed(ctx context.Context, generation int64, reports []*models.HazardReport) error
	InvalidateConfirmed(ctx context.Context) error
}

// RoutingEngine — внешний маршрутизатор
type RoutingEngine interface {
	Directions(ctx context.Context, req ors.DirectionsRequest) (json.RawMessage, error)
}

// UserService определяет бизнес-логику работы с пользователями
type UserService interface {
	Register(ctx context.Context) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ReportService определяет бизнес-логику работы с отметками об опасностях
type ReportService interface {
	CreateReport(ctx context.Context, input CreateReportInput) (*models.HazardReport, error)
	GetReport(ctx context.Context, id uuid.UUID) (*models.HazardReport, error)
	ListReports(ctx context.Context) ([]*models.HazardReport, error)
	ConfirmedReports(ctx context.Context) ([]*models.HazardReport, error)
}

// ValidationService применяет голоса пользователей к отметкам
type ValidationService interface {
	CastVote(ctx context.Context, vote models.Vote) (*models.VoteResult, error)
}

// RouteService строит маршруты в обход подтверждённых опасностей
type RouteService interface {
	PlanRoute(ctx context.Context, req RouteRequest) (*Route, error)
}
