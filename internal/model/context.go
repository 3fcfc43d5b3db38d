package model

type TransportMode string

const (
	TransportVehicle    TransportMode = "vehicle"
	TransportNonVehicle TransportMode = "non_vehicle"
)

// ProjectContext — условия производства работ, общие для всей сметы.
// Определяет состав коэффициентов позиций и параметры дополнительных затрат.
type ProjectContext struct {
	SoilCategory string        `json:"soil_category"`
	ClimateZone  string        `json:"climate_zone"`
	Complexity   string        `json:"complexity"`
	Region       string        `json:"region"`
	DistanceKm   float64       `json:"distance_km"`
	Transport    TransportMode `json:"transport"`

	HasStaticSounding bool `json:"has_static_sounding"`
	UseInterpolation  bool `json:"use_interpolation"`
	LocalWork         bool `json:"local_work"`
	UnfavorablePeriod bool `json:"unfavorable_period"`
	RegimeObject      bool `json:"regime_object"`
	LabAtBase         bool `json:"lab_at_base"`
}

// DefaultProjectContext — условия по умолчанию: II категория грунтов,
// IV климатическая зона, II категория сложности, интерполяция включена,
// лаборатория на базе.
func DefaultProjectContext() ProjectContext {
	return ProjectContext{
		SoilCategory:     "II",
		ClimateZone:      "IV",
		Complexity:       "II",
		Transport:        TransportVehicle,
		UseInterpolation: true,
		LabAtBase:        true,
	}
}
