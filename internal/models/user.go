package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// InitialScore — репутация нового пользователя
	InitialScore = 50
	MinScore     = 0
	MaxScore     = 100
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
