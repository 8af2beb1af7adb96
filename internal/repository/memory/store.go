// Package memory реализует service.Store в памяти процесса.
// Транзакции сериализуются одним мьютексом и применяются атомарно.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/service"
	"github.com/shenikar/safe_route_system/pkg/e"
)

var ErrAlreadyInTx = errors.New("already in tx")

type state struct {
	users   map[uuid.UUID]models.User
	reports map[uuid.UUID]models.HazardReport
}

func (s *state) clone() *state {
	c := &state{
		users:   make(map[uuid.UUID]models.User, len(s.users)),
		reports: make(map[uuid.UUID]models.HazardReport, len(s.reports)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	return c
}

type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

var _ service.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			users:   make(map[uuid.UUID]models.User),
			reports: make(map[uuid.UUID]models.HazardReport),
		},
	}
}

func (s *Store) Users() service.UserRepository     { return &userRepository{s} }
func (s *Store) Reports() service.ReportRepository { return &reportRepository{s} }

// WithTx выполняет fn над копией состояния и публикует её только при успехе
func (s *Store) WithTx(ctx context.Context, fn func(tx service.Store) error) error {
	if s.inTx {
		return ErrAlreadyInTx
	}
	if err := ctx.Err(); err != nil {
		return e.WrapError(ctx, "begin tx", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: staged, inTx: true}); err != nil {
		return err
	}
	*s.st = *staged
	return nil
}

// locked выполняет f под мьютексом, если хранилище не внутри транзакции
func (s *Store) locked(f func()) {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	f()
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.s.locked(func() {
		user.ID = uuid.New()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now()
		}
		r.s.st.users[user.ID] = *user
	})
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var (
		user models.User
		ok   bool
	)
	r.s.locked(func() { user, ok = r.s.st.users[id] })
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, e.ErrNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) UpdateScore(_ context.Context, id uuid.UUID, score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return fmt.Errorf("score %d out of range: %w", score, e.ErrMalformedInput)
	}
	var ok bool
	r.s.locked(func() {
		var user models.User
		if user, ok = r.s.st.users[id]; ok {
			user.Score = score
			r.s.st.users[id] = user
		}
	})
	if !ok {
		return fmt.Errorf("user with id %s not found for update: %w", id, e.ErrNotFound)
	}
	return nil
}

type reportRepository struct{ s *Store }

func (r *reportRepository) Create(_ context.Context, report *models.HazardReport) error {
	var creatorExists bool
	r.s.locked(func() {
		if _, creatorExists = r.s.st.users[report.CreatorID]; !creatorExists {
			return
		}
		report.ID = uuid.New()
		r.s.st.reports[report.ID] = *report
	})
	if !creatorExists {
		return fmt.Errorf("create report: unknown creator %s: %w", report.CreatorID, e.ErrMalformedInput)
	}
	return nil
}

func (r *reportRepository) GetByID(_ context.Context, id uuid.UUID) (*models.HazardReport, error) {
	var (
		report models.HazardReport
		ok     bool
	)
	r.s.locked(func() { report, ok = r.s.st.reports[id] })
	if !ok {
		return nil, fmt.Errorf("get report %s: %w", id, e.ErrNotFound)
	}
	return &report, nil
}

func (r *reportRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.HazardReport, error) {
	return r.GetByID(ctx, id)
}

func (r *reportRepository) List(_ context.Context) ([]*models.HazardReport, error) {
	return r.filter(func(models.HazardReport) bool { return true }, true), nil
}

func (r *reportRepository) ListConfirmed(_ context.Context) ([]*models.HazardReport, error) {
	return r.filter(func(rep models.HazardReport) bool { return rep.IsValid }, false), nil
}

func (r *reportRepository) filter(keep func(models.HazardReport) bool, newestFirst bool) []*models.HazardReport {
	reports := make([]*models.HazardReport, 0)
	r.s.locked(func() {
		for _, rep := range r.s.st.reports {
			if keep(rep) {
				rep := rep
				reports = append(reports, &rep)
			}
		}
	})
	sort.Slice(reports, func(i, j int) bool {
		if newestFirst {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
	return reports
}

func (r *reportRepository) Confirm(_ context.Context, id uuid.UUID) error {
	return r.pendingOnly("confirm report", id, func(rep models.HazardReport) {
		rep.IsValid = true
		r.s.st.reports[id] = rep
	})
}

func (r *reportRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.pendingOnly("delete report", id, func(models.HazardReport) {
		delete(r.s.st.reports, id)
	})
}

func (r *reportRepository) pendingOnly(op string, id uuid.UUID, apply func(models.HazardReport)) error {
	var err error
	r.s.locked(func() {
		rep, ok := r.s.st.reports[id]
		switch {
		case !ok:
			err = fmt.Errorf("%s %s: %w", op, id, e.ErrNotFound)
		case rep.IsValid:
			err = fmt.Errorf("%s %s: %w", op, id, e.ErrAlreadyResolved)
		default:
			apply(rep)
		}
	})
	return err
}
