package models

// Equipment is one reading row from the most recent CSV upload.
type Equipment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Type        string  `gorm:"type:varchar(100);not null;index" json:"type"`
	Flowrate    float64 `gorm:"not null" json:"flowrate"`
	Pressure    float64 `gorm:"not null" json:"pressure"`
	Temperature float64 `gorm:"not null" json:"temperature"`
}

// TypeCount is one bucket of the per-type distribution.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type EquipmentSummary struct {
	Total            int64       `json:"total"`
	AvgFlowrate      float64     `json:"avg_flowrate"`
	AvgPressure      float64     `json:"avg_pressure"`
	AvgTemperature   float64     `json:"avg_temperature"`
	TypeDistribution []TypeCount `json:"type_distribution"`
}
