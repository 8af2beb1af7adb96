package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/sirupsen/logrus"
)

type userService struct {
	store  Store
	logger *logrus.Logger
}

func NewUserService(store Store, logger *logrus.Logger) UserService {
	return &userService{
		store:  store,
		logger: logger,
	}
}

// Register создаёт пользователя с начальной репутацией
func (s *userService) Register(ctx context.Context) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "Register",
	})

	user := &models.User{Score: models.InitialScore}
	if err := s.store.Users().Create(ctx, user); err != nil {
		log.WithError(err).Error("Failed to create user in repository")
		return nil, fmt.Errorf("service: could not register user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

// GetUser возвращает пользователя по ID
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "user",
			"method":  "GetUser",
			"user_id": id,
		}).WithError(err).Warn("Failed to get user from repository")
		return nil, fmt.Errorf("service: could not get user: %w", err)
	}
	return user, nil
}
