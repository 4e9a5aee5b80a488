package models

// PlantRecord is one row of the power plant database
type PlantRecord struct {
	ID             string  `json:"id" validate:"required"`
	Name           string  `json:"name"`
	Country        string  `json:"country" validate:"required"` // long country name, e.g. "Germany"
	CountryCode    string  `json:"country_code"`                // ISO alpha-3, e.g. "DEU"
	Technology     string  `json:"technology" validate:"required"`
	CapacityMW     float64 `json:"capacity_mw" validate:"gte=0"`
	CommissionYear int     `json:"commission_year,omitempty" validate:"omitempty,gte=1800,lte=2100"` // 0 when unknown
	Lat            float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon            float64 `json:"lon" validate:"gte=-180,lte=180"`
	HasLocation    bool    `json:"-"`
}
