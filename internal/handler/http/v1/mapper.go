package v1

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/shenikar/safe_route_system/internal/models"
)

// ModelToUserResponse преобразует пользователя в DTO для ответа
func ModelToUserResponse(model *models.User) *UserResponse {
	return &UserResponse{
		ID:        model.ID,
		Score:     model.Score,
		CreatedAt: model.CreatedAt,
	}
}

// ModelToFeature преобразует отметку в GeoJSON Feature. Автор отметки наружу не отдаётся.
func ModelToFeature(model *models.HazardReport) *geojson.Feature {
	feature := geojson.NewFeature(orb.Point{model.Longitude, model.Latitude})
	feature.ID = model.ID.String()
	feature.Properties["id"] = model.ID.String()
	feature.Properties["classification"] = string(model.Classification)
	if model.Description != "" {
		feature.Properties["description"] = model.Description
	}
	feature.Properties["is_valid"] = model.IsValid
	feature.Properties["created_at"] = model.CreatedAt.Format(time.RFC3339)
	return feature
}

// ModelsToFeatureCollection преобразует слайс отметок в FeatureCollection
func ModelsToFeatureCollection(reports []*models.HazardReport) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, report := range reports {
		fc.Append(ModelToFeature(report))
	}
	return fc
}
