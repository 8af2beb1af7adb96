// Package avoidance строит зоны объезда для маршрутизатора из подтверждённых отметок.
package avoidance

import (
	"github.com/paulmach/orb"
	"github.com/shenikar/safe_route_system/internal/models"
)

// Offset — половина стороны квадрата зоны в градусах (~11 м на экваторе)
const Offset = 0.0001

// Zone возвращает замкнутое кольцо из 5 точек вокруг (lon, lat).
// Обход начинается с северо-восточного угла и идёт по часовой стрелке.
func Zone(lat, lon float64) orb.Ring {
	return orb.Ring{
		{lon + Offset, lat + Offset},
		{lon - Offset, lat + Offset},
		{lon - Offset, lat - Offset},
		{lon + Offset, lat - Offset},
		{lon + Offset, lat + Offset},
	}
}

// BuildAvoidanceSet превращает подтверждённые отметки в мультиполигон.
// Неподтверждённые отметки и отметки с некорректными координатами пропускаются.
// Пересекающиеся зоны не объединяются.
func BuildAvoidanceSet(reports []*models.HazardReport) orb.MultiPolygon {
	set := make(orb.MultiPolygon, 0, len(reports))
	for _, r := range reports {
		if r == nil || !r.IsValid || !r.HasValidCoordinates() {
			continue
		}
		set = append(set, orb.Polygon{Zone(r.Latitude, r.Longitude)})
	}
	return set
}
