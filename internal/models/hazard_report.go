package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Classification — тип опасности, о которой сообщает пользователь
type Classification string

const (
	Pothole  Classification = "pothole"
	Assault  Classification = "assault"
	Flooding Classification = "flooding"
	Roadwork Classification = "roadwork"
	Closure  Classification = "closure"
)

// Classifications перечисляет все допустимые типы опасностей
var Classifications = []Classification{Pothole, Assault, Flooding, Roadwork, Closure}

func (c Classification) Valid() bool {
	for _, known := range Classifications {
		if c == known {
			return true
		}
	}
	return false
}

// MaxDescriptionLength ограничивает длину необязательного описания отметки в символах
const MaxDescriptionLength = 500

// HazardReport представляет отметку об опасном месте.
// CreatorID и координаты не меняются после создания.
type HazardReport struct {
	ID             uuid.UUID      `json:"id"`
	CreatorID      uuid.UUID      `json:"creator_id"`
	Classification Classification `json:"classification"`
	Description    string         `json:"description,omitempty"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	IsValid        bool           `json:"is_valid"`
	CreatedAt      time.Time      `json:"created_at"`
}

// HasValidCoordinates проверяет, что координаты конечны и лежат в допустимых пределах
func (r *HazardReport) HasValidCoordinates() bool {
	return ValidLatLon(r.Latitude, r.Longitude)
}

func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
