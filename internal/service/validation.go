package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/reputation"
	"github.com/shenikar/safe_route_system/internal/webhook"
	"github.com/shenikar/safe_route_system/pkg/e"
	"github.com/shenikar/safe_route_system/pkg/keymutex"
	"github.com/shenikar/safe_route_system/pkg/metrics"
	"github.com/sirupsen/logrus"
)

type validationService struct {
	store     Store
	cache     HazardCache
	publisher webhook.EventPublisher
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	locks     *keymutex.KeyMutex[uuid.UUID]
	now       func() time.Time
}

func NewValidationService(store Store, cache HazardCache, publisher webhook.EventPublisher, logger *logrus.Logger, m *metrics.Metrics) ValidationService {
	return &validationService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		locks:     keymutex.New[uuid.UUID](),
		now:       time.Now,
	}
}

// CastVote применяет голос к отметке.
// Проверки выполняются по порядку: отметка существует, голосует не автор, отметка ещё не подтверждена.
// Изменение отметки и счёта автора фиксируются одной транзакцией.
func (s *validationService) CastVote(ctx context.Context, vote models.Vote) (*models.VoteResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "validation",
		"method":    "CastVote",
		"report_id": vote.ReportID,
		"voter_id":  vote.VoterID,
		"approve":   vote.Approve,
	})
	log.Info("Attempting to cast a vote")

	if vote.ReportID == uuid.Nil || vote.VoterID == uuid.Nil {
		s.metrics.VoteProcessed("malformed")
		return nil, fmt.Errorf("service: report and voter are required: %w", e.ErrMalformedInput)
	}

	result, err := s.applyVote(ctx, vote)
	if err != nil {
		s.metrics.VoteProcessed(voteErrorLabel(err))
		if e.IsCallerError(err) {
			log.WithError(err).Warn("Vote rejected")
		} else {
			log.WithError(err).Error("Failed to apply vote")
		}
		return nil, fmt.Errorf("service: could not cast vote: %w", err)
	}
	s.metrics.VoteProcessed(string(result.Outcome))

	// Отметка изменилась в любом случае: подтверждённая попадает в зоны объезда, удалённая пропадает из списка
	if s.cache != nil {
		if err := s.cache.InvalidateConfirmed(ctx); err != nil {
			log.WithError(err).Warn("Failed to invalidate confirmed reports cache")
		}
	}
	s.publish(ctx, log, vote, result)

	log.WithFields(logrus.Fields{
		"outcome":   result.Outcome,
		"new_score": result.NewScore,
	}).Info("Vote applied successfully")
	return result, nil
}

// applyVote выполняет переход состояния под блокировкой отметки.
// Блокировка держится только на время локальной транзакции.
func (s *validationService) applyVote(ctx context.Context, vote models.Vote) (*models.VoteResult, error) {
	unlock := s.locks.Lock(vote.ReportID)
	defer unlock()

	var result *models.VoteResult
	err := s.store.WithTx(ctx, func(tx Store) error {
		report, err := tx.Reports().GetForUpdate(ctx, vote.ReportID)
		if err != nil {
			return err
		}
		if report.CreatorID == vote.VoterID {
			return e.ErrSelfValidation
		}
		if report.IsValid {
			return e.ErrAlreadyResolved
		}

		creator, err := tx.Users().GetForUpdate(ctx, report.CreatorID)
		if err != nil {
			return fmt.Errorf("load creator: %w", err)
		}
		newScore := reputation.ApplyVote(creator.Score, vote.Approve)

		outcome := models.OutcomeConfirmed
		if vote.Approve {
			err = tx.Reports().Confirm(ctx, report.ID)
		} else {
			outcome = models.OutcomeRetracted
			err = tx.Reports().Delete(ctx, report.ID)
		}
		if err != nil {
			return err
		}
		if err := tx.Users().UpdateScore(ctx, creator.ID, newScore); err != nil {
			return fmt.Errorf("update creator score: %w", err)
		}

		result = &models.VoteResult{
			ReportID:  report.ID,
			CreatorID: creator.ID,
			Outcome:   outcome,
			NewScore:  newScore,
			DecidedAt: s.now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *validationService) publish(ctx context.Context, log *logrus.Entry, vote models.Vote, result *models.VoteResult) {
	if s.publisher == nil {
		return
	}
	event := webhook.ValidationEvent{
		ReportID:  result.ReportID,
		CreatorID: result.CreatorID,
		VoterID:   vote.VoterID,
		Outcome:   result.Outcome,
		NewScore:  result.NewScore,
		Timestamp: result.DecidedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish validation event")
	}
}

func voteErrorLabel(err error) string {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return "not_found"
	case errors.Is(err, e.ErrSelfValidation):
		return "self_validation"
	case errors.Is(err, e.ErrAlreadyResolved):
		return "already_resolved"
	default:
		return "error"
	}
}
