package ors

import (
	"fmt"
	"strings"

	"github.com/shenikar/safe_route_system/pkg/e"
)

// Profile — способ передвижения в терминах OpenRouteService
type Profile string

const (
	FootWalking     Profile = "foot-walking"
	FootHiking      Profile = "foot-hiking"
	CyclingRegular  Profile = "cycling-regular"
	CyclingRoad     Profile = "cycling-road"
	CyclingMountain Profile = "cycling-mountain"
	CyclingElectric Profile = "cycling-electric"
	Wheelchair      Profile = "wheelchair"
)

var profileAliases = map[string]Profile{
	"walking":               FootWalking,
	"foot":                  FootWalking,
	"hiking":                FootHiking,
	"cycling":               CyclingRegular,
	"bike":                  CyclingRegular,
	string(FootWalking):     FootWalking,
	string(FootHiking):      FootHiking,
	string(CyclingRegular):  CyclingRegular,
	string(CyclingRoad):     CyclingRoad,
	string(CyclingMountain): CyclingMountain,
	string(CyclingElectric): CyclingElectric,
	string(Wheelchair):      Wheelchair,
}

// ParseProfile сопоставляет пользовательское название с профилем маршрутизатора.
// Неизвестные названия возвращают e.ErrInvalidProfile.
func ParseProfile(name string) (Profile, error) {
	p, ok := profileAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("profile %q: %w", name, e.ErrInvalidProfile)
	}
	return p, nil
}
