package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Defaults applied when a JSONB document omits a field.
const (
	DefaultBearingTrees    = 100
	DefaultMoistureContent = 7.0
)

// FarmProfile describes a supplier's farm. Stored as JSONB in suppliers.description.
type FarmProfile struct {
	BearingTrees     int     `json:"bearing_trees"`
	TotalHectares    float64 `json:"total_hectares,omitempty"`
	ElevationMeters  float64 `json:"elevation_meters,omitempty"`
	SoilType         string  `json:"soil_type,omitempty"`
	AnnualRainfallMM float64 `json:"annual_rainfall_mm,omitempty"`
}

func (p *FarmProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		BearingTrees     *int    `json:"bearing_trees"`
		TotalHectares    float64 `json:"total_hectares"`
		ElevationMeters  float64 `json:"elevation_meters"`
		SoilType         string  `json:"soil_type"`
		AnnualRainfallMM float64 `json:"annual_rainfall_mm"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = FarmProfile{
		BearingTrees:     DefaultBearingTrees,
		TotalHectares:    raw.TotalHectares,
		ElevationMeters:  raw.ElevationMeters,
		SoilType:         raw.SoilType,
		AnnualRainfallMM: raw.AnnualRainfallMM,
	}
	if raw.BearingTrees != nil {
		p.BearingTrees = *raw.BearingTrees
	}
	return nil
}

func (p *FarmProfile) Scan(src interface{}) error {
	return scanJSONB(src, p, func() { *p = FarmProfile{BearingTrees: DefaultBearingTrees} })
}

func (p FarmProfile) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Eligibility holds certification data. Stored as JSONB in suppliers.eligibility.
type Eligibility struct {
	PhilgapCertified bool   `json:"philgap_certified"`
	PhilgapID        string `json:"philgap_id,omitempty"`
}

func (e *Eligibility) Scan(src interface{}) error {
	return scanJSONB(src, e, func() { *e = Eligibility{} })
}

func (e Eligibility) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// CutTestResults is the cut-test section of a quality audit.
type CutTestResults struct {
	MoldyPercent         float64 `json:"moldy_percent"`
	InsectDamagedPercent float64 `json:"insect_damaged_percent"`
}

// QualityAudit is the per-delivery quality record. Stored as JSONB in transactions.quality.
type QualityAudit struct {
	MoistureContent float64        `json:"moisture_content"`
	CutTestResults  CutTestResults `json:"cut_test_results"`
}

func (q *QualityAudit) UnmarshalJSON(data []byte) error {
	var raw struct {
		MoistureContent *float64       `json:"moisture_content"`
		CutTestResults  CutTestResults `json:"cut_test_results"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*q = QualityAudit{
		MoistureContent: DefaultMoistureContent,
		CutTestResults:  raw.CutTestResults,
	}
	if raw.MoistureContent != nil {
		q.MoistureContent = *raw.MoistureContent
	}
	return nil
}

func (q *QualityAudit) Scan(src interface{}) error {
	return scanJSONB(src, q, func() { *q = QualityAudit{MoistureContent: DefaultMoistureContent} })
}

func (q QualityAudit) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// scanJSONB decodes a JSONB column. NULL and empty documents resolve to the type defaults.
func scanJSONB(src interface{}, dst interface{}, setDefaults func()) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		setDefaults()
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}

	if len(data) == 0 || string(data) == "null" {
		setDefaults()
		return nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode jsonb: %w", err)
	}
	return nil
}
