package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote — оценка чужой отметки другим пользователем. В бд не хранится.
type Vote struct {
	ReportID uuid.UUID `json:"report_id"`
	VoterID  uuid.UUID `json:"voter_id"`
	Approve  bool      `json:"approve"`
}

// VoteOutcome описывает итог голосования
type VoteOutcome string

const (
	OutcomeConfirmed VoteOutcome = "confirmed"
	OutcomeRetracted VoteOutcome = "retracted"
)

// VoteResult — состояние после успешно применённого голоса
type VoteResult struct {
	ReportID  uuid.UUID   `json:"report_id"`
	CreatorID uuid.UUID   `json:"creator_id"`
	Outcome   VoteOutcome `json:"outcome"`
	NewScore  int         `json:"new_score"`
	DecidedAt time.Time   `json:"decided_at"`
}
