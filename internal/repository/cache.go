package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/service"
)

const (
	confirmedHazardsKey = "hazards:confirmed"
	// счётчик поколений кэша, увеличивается при каждом сбросе
	confirmedGenerationKey = "hazards:confirmed:generation"
)

// HazardCache хранит список подтверждённых отметок в Redis
type HazardCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ service.HazardCache = (*HazardCache)(nil)

func NewHazardCache(client *redis.Client, ttl time.Duration) *HazardCache {
	return &HazardCache{
		client: client,
		ttl:    ttl,
	}
}

// GetConfirmed читает список и текущее поколение одним запросом; при промахе список равен nil
func (c *HazardCache) GetConfirmed(ctx context.Context) ([]*models.HazardReport, int64, error) {
	var genCmd, listCmd *redis.StringCmd
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		genCmd = pipe.Get(ctx, confirmedGenerationKey)
		listCmd = pipe.Get(ctx, confirmedHazardsKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("failed to get confirmed hazards from cache: %w", err)
	}

	generation, err := genCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("failed to read confirmed hazards generation: %w", err)
	}

	val, err := listCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get confirmed hazards from cache: %w", err)
	}

	reports := make([]*models.HazardReport, 0)
	if err := json.Unmarshal(val, &reports); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal confirmed hazards from cache: %w", err)
	}
	return reports, generation, nil
}

// SetConfirmed сохраняет подтверждённые отметки, если поколение не изменилось с момента чтения
func (c *HazardCache) SetConfirmed(ctx context.Context, generation int64, reports []*models.HazardReport) error {
	if reports == nil {
		reports = []*models.HazardReport{}
	}
	val, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmed hazards for cache: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, confirmedGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return service.ErrStaleCache
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, confirmedHazardsKey, val, c.ttl)
			return nil
		})
		return err
	}, confirmedGenerationKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrStaleCache):
		return err
	case errors.Is(err, redis.TxFailedErr):
		// поколение сменилось между WATCH и EXEC
		return service.ErrStaleCache
	default:
		return fmt.Errorf("failed to set confirmed hazards in cache: %w", err)
	}
}

// InvalidateConfirmed начинает новое поколение и удаляет список
func (c *HazardCache) InvalidateConfirmed(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, confirmedGenerationKey)
		pipe.Del(ctx, confirmedHazardsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate confirmed hazards cache: %w", err)
	}
	return nil
}
