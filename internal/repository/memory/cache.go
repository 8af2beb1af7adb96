package memory

import (
	"context"
	"sync"

	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/service"
)

// HazardCache повторяет поведение Redis-кэша в памяти процесса
type HazardCache struct {
	mu         sync.Mutex
	generation int64
	reports    []*models.HazardReport
	filled     bool
}

var _ service.HazardCache = (*HazardCache)(nil)

func NewHazardCache() *HazardCache {
	return &HazardCache{}
}

func (c *HazardCache) GetConfirmed(ctx context.Context) ([]*models.HazardReport, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.filled {
		return nil, c.generation, nil
	}
	out := make([]*models.HazardReport, len(c.reports))
	for i, r := range c.reports {
		cp := *r
		out[i] = &cp
	}
	return out, c.generation, nil
}

func (c *HazardCache) SetConfirmed(ctx context.Context, generation int64, reports []*models.HazardReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return service.ErrStaleCache
	}
	c.reports = make([]*models.HazardReport, len(reports))
	for i, r := range reports {
		cp := *r
		c.reports[i] = &cp
	}
	c.filled = true
	return nil
}

func (c *HazardCache) InvalidateConfirmed(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.reports = nil
	c.filled = false
	return nil
}
