package domain

import (
	"math"
	"time"
)

// ReportPageSize is the fixed number of summaries per list page.
const ReportPageSize = 10

// MaxReportPage is the highest page whose offset fits a 32-bit integer.
const MaxReportPage = math.MaxInt32 / ReportPageSize

// DefaultBatchSize is the number of sea temperatures per stream event.
const DefaultBatchSize = 10

// WeatherReport is a single marine weather observation document.
// Field names follow the NOAA ISD sample schema the store was seeded from.
type WeatherReport struct {
	ID                                string                             `json:"id"`
	ST                                string                             `json:"st,omitempty"`
	TS                                time.Time                          `json:"ts"`
	Position                          *Position                          `json:"position,omitempty"`
	Elevation                         *int                               `json:"elevation,omitempty"`
	CallLetters                       string                             `json:"callLetters,omitempty"`
	QualityControlProcess             string                             `json:"qualityControlProcess,omitempty"`
	DataSource                        string                             `json:"dataSource,omitempty"`
	Type                              string                             `json:"type,omitempty"`
	AirTemperature                    *Measurement                       `json:"airTemperature,omitempty"`
	DewPoint                          *Measurement                       `json:"dewPoint,omitempty"`
	Pressure                          *Measurement                       `json:"pressure,omitempty"`
	Wind                              *Wind                              `json:"wind,omitempty"`
	Visibility                        *Visibility                        `json:"visibility,omitempty"`
	SkyCondition                      *SkyCondition                      `json:"skyCondition,omitempty"`
	Sections                          []string                           `json:"sections,omitempty"`
	PrecipitationEstimatedObservation *PrecipitationEstimatedObservation `json:"precipitationEstimatedObservation,omitempty"`
	AtmosphericPressureChange         *AtmosphericPressureChange         `json:"atmosphericPressureChange,omitempty"`
	SeaSurfaceTemperature             *Measurement                       `json:"seaSurfaceTemperature,omitempty"`
}

// Position is a GeoJSON point; Coordinates are [longitude, latitude].
type Position struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Lon returns the longitude, or false when the position is malformed.
func (p *Position) Lon() (float64, bool) {
	if p == nil || len(p.Coordinates) < 2 {
		return 0, false
	}
	return p.Coordinates[0], true
}

// Lat returns the latitude, or false when the position is malformed.
func (p *Position) Lat() (float64, bool) {
	if p == nil || len(p.Coordinates) < 2 {
		return 0, false
	}
	return p.Coordinates[1], true
}

type Measurement struct {
	Value   *float64 `json:"value,omitempty"`
	Quality string   `json:"quality,omitempty"`
}

// MeasurementValue returns the value of m, nil when m or its value is absent.
func MeasurementValue(m *Measurement) *float64 {
	if m == nil {
		return nil
	}
	return m.Value
}

type Wind struct {
	Direction *WindDirection `json:"direction,omitempty"`
	Type      string         `json:"type,omitempty"`
	Speed     *WindSpeed     `json:"speed,omitempty"`
}

type WindDirection struct {
	Angle   *int   `json:"angle,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type WindSpeed struct {
	Rate    *float64 `json:"rate,omitempty"`
	Quality string   `json:"quality,omitempty"`
}

type Visibility struct {
	Distance    *VisibilityDistance    `json:"distance,omitempty"`
	Variability *VisibilityVariability `json:"variability,omitempty"`
}

type VisibilityDistance struct {
	Value   *int   `json:"value,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type VisibilityVariability struct {
	Value   string `json:"value,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type SkyCondition struct {
	CeilingHeight *CeilingHeight `json:"ceilingHeight,omitempty"`
	Cavok         string         `json:"cavok,omitempty"`
}

type CeilingHeight struct {
	Value         *int   `json:"value,omitempty"`
	Quality       string `json:"quality,omitempty"`
	Determination string `json:"determination,omitempty"`
}

type PrecipitationEstimatedObservation struct {
	Discrepancy         string `json:"discrepancy,omitempty"`
	EstimatedWaterDepth *int   `json:"estimatedWaterDepth,omitempty"`
}

type AtmosphericPressureChange struct {
	Tendency        *PressureTendency `json:"tendency,omitempty"`
	Quantity3Hours  *PressureQuantity `json:"quantity3Hours,omitempty"`
	Quantity24Hours *PressureQuantity `json:"quantity24Hours,omitempty"`
}

type PressureTendency struct {
	Code    string `json:"code,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type PressureQuantity struct {
	Value   *float64 `json:"value,omitempty"`
	Quality string   `json:"quality,omitempty"`
}

// ReportSummary is the projection served by the paginated list.
type ReportSummary struct {
	ID                    string    `json:"id"`
	TS                    time.Time `json:"ts"`
	SeaSurfaceTemperature *float64  `json:"seaSurfaceTemperature,omitempty"`
	AirTemperature        *float64  `json:"airTemperature,omitempty"`
}

// ReportPage is one page of summaries plus the total page count.
type ReportPage struct {
	Reports    []ReportSummary `json:"reports"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

// TotalPages returns ceil(total / pageSize); zero matches yield zero pages.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// TimeRange bounds the report timestamp. Nil ends are open.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// RawRecord is one projected row read from the store cursor.
type RawRecord struct {
	Longitude             float64
	Latitude              float64
	SeaSurfaceTemperature *float64
}

// SeaTemperature is one point of the public stream. Field names are fixed for
// client compatibility.
type SeaTemperature struct {
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
	Temp float64 `json:"temp"`
}

// SeaTemperatureBatch is the payload of one stream event.
type SeaTemperatureBatch []SeaTemperature

// CoordinateKey identifies a position for de-duplication within one stream.
type CoordinateKey struct {
	Longitude float64
	Latitude  float64
}
