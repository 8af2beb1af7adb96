package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/config"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/repository/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// newTestLogger — логгер, который ничего не выводит
func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func newTestConfig() *config.Config {
	return &config.Config{
		TrustThreshold: 100,
		TimeZone:       "America/Fortaleza",
		DefaultProfile: "foot-walking",
	}
}

// newUser создаёт пользователя с заданным счётом прямо в хранилище
func newUser(t *testing.T, store *memory.Store, score int) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Score: models.InitialScore}
	require.NoError(t, store.Users().Create(ctx, user))
	if score != models.InitialScore {
		require.NoError(t, store.Users().UpdateScore(ctx, user.ID, score))
		user.Score = score
	}
	return user
}

// newPendingReport создаёт неподтверждённую отметку
func newPendingReport(t *testing.T, store *memory.Store, creatorID uuid.UUID) *models.HazardReport {
	t.Helper()
	report := &models.HazardReport{
		CreatorID:      creatorID,
		Classification: models.Pothole,
		Latitude:       -3.71,
		Longitude:      -38.51,
	}
	require.NoError(t, store.Reports().Create(context.Background(), report))
	return report
}

func userScore(t *testing.T, store *memory.Store, id uuid.UUID) int {
	t.Helper()
	user, err := store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return user.Score
}
