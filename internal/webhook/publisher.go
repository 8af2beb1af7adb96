package webhook

//go:generate mockgen -package mocks -source=publisher.go -destination=mocks/mock_publisher.go

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/safe_route_system/internal/models"
)

const (
	eventQueueKey = "validation_events"
)

// ValidationEvent - структура для данных вебхука об итоге голосования
type ValidationEvent struct {
	ReportID  uuid.UUID          `json:"report_id"`
	CreatorID uuid.UUID          `json:"creator_id"`
	VoterID   uuid.UUID          `json:"voter_id"`
	Outcome   models.VoteOutcome `json:"outcome"`
	NewScore  int                `json:"new_score"`
	Timestamp time.Time          `json:"timestamp"`
}

// EventPublisher - интерфейс для публикации событий валидации
type EventPublisher interface {
	Publish(ctx context.Context, event ValidationEvent) error
}

// RedisEventPublisher - реализация EventPublisher, использующая очередь в Redis
type RedisEventPublisher struct {
	redisClient *redis.Client
}

// NewRedisEventPublisher создает новый RedisEventPublisher
func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisEventPublisher) Publish(ctx context.Context, event ValidationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal validation event: %w", err)
	}

	// LPUSH добавляет событие в голову списка, воркер забирает с хвоста
	if err := p.redisClient.LPush(ctx, eventQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish validation event to Redis: %w", err)
	}
	return nil
}
