package v1

import (
	"time"

	"github.com/google/uuid"
)

// RegisterUserResponse DTO для ответа при регистрации
// @Description DTO для ответа при регистрации
type RegisterUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Score int       `json:"score"`
	Token string    `json:"token"`
}

// UserResponse DTO для ответа с информацией о пользователе
// @Description DTO для ответа с информацией о пользователе
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePositionRequest DTO для создания отметки об опасности
// @Description DTO для создания отметки об опасности. origin в формате "lat,lon".
type CreatePositionRequest struct {
	Origin         string `json:"origin" validate:"required" example:"-3.71,-38.51"`
	Classification string `json:"classification" validate:"required,oneof=pothole assault flooding roadwork closure" example:"pothole"`
	Description    string `json:"description,omitempty" validate:"max=500" example:"Deep pothole in the right lane"`
}

// CreatePositionResponse DTO для ответа при создании отметки
// @Description DTO для ответа при создании отметки
type CreatePositionResponse struct {
	ID      uuid.UUID `json:"id"`
	IsValid bool      `json:"is_valid"`
}

// ValidateRequest DTO для голоса по отметке
// @Description DTO для голоса по отметке
type ValidateRequest struct {
	ReportID string `json:"report_id" validate:"required,uuid"`
	Approve  *bool  `json:"approve" validate:"required"`
}

// ValidateResponse DTO для результата голосования
// @Description DTO для результата голосования
type ValidateResponse struct {
	ReportID     uuid.UUID `json:"report_id"`
	Outcome      string    `json:"outcome"`
	CreatorScore int       `json:"creator_score"`
}

// RouteRequest DTO для построения маршрута
// @Description DTO для построения маршрута. Точки в формате "lat,lon".
type RouteRequest struct {
	Origin      string `json:"origin" validate:"required" example:"-3.7,-38.5"`
	Destination string `json:"destination" validate:"required" example:"-3.72,-38.52"`
	Profile     string `json:"profile,omitempty" example:"walking"`
}
