package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shenikar/safe_route_system/pkg/e"
)

// decimalRe допускает только десятичную запись: без экспоненты, hex, "_", Inf и NaN
var decimalRe = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// LatLon — пара координат в порядке (широта, долгота)
type LatLon struct {
	Lat float64
	Lon float64
}

// LonLat возвращает координаты в порядке, который ожидает маршрутизатор
func (p LatLon) LonLat() [2]float64 {
	return [2]float64{p.Lon, p.Lat}
}

// ParseLatLon разбирает строку вида "lat,lon".
// Любое отклонение от формата возвращает e.ErrInvalidCoordinates.
func ParseLatLon(s string) (LatLon, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return LatLon{}, fmt.Errorf("%q: expected \"lat,lon\": %w", s, e.ErrInvalidCoordinates)
	}
	lat, err := parseDecimal(parts[0])
	if err != nil {
		return LatLon{}, fmt.Errorf("%q: bad latitude: %w", s, e.ErrInvalidCoordinates)
	}
	lon, err := parseDecimal(parts[1])
	if err != nil {
		return LatLon{}, fmt.Errorf("%q: bad longitude: %w", s, e.ErrInvalidCoordinates)
	}
	if !ValidLatLon(lat, lon) {
		return LatLon{}, fmt.Errorf("%q: out of range: %w", s, e.ErrInvalidCoordinates)
	}
	return LatLon{Lat: lat, Lon: lon}, nil
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !decimalRe.MatchString(s) {
		return 0, fmt.Errorf("not a decimal number: %q", s)
	}
	return strconv.ParseFloat(s, 64)
}
